package restclient

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj any)
	InfoObj(msg, key string, obj any)
	WarnObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, any) {}
func (nopLogger) InfoObj(string, string, any)  {}
func (nopLogger) WarnObj(string, string, any)  {}
func (nopLogger) ErrorObj(string, string, any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
