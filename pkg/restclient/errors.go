package restclient

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilTransport is returned by New when no transport is supplied.
var ErrNilTransport = errors.New("restclient: transport is required")

// InterpretError reports a raw response that could not be split into a
// header block and body. Raw carries the offending text for debugging.
type InterpretError struct {
	Reason string
	Raw    string
}

func (e *InterpretError) Error() string {
	return "interpret response: " + e.Reason
}

// TransportError reports that no response was obtained and the transport
// returned an error. No Response is attached because none was produced.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a 200 response whose body the configured Format
// failed to parse. It wraps the parse failure and carries the response.
type DecodeError struct {
	Err  error
	resp Response
}

func (e *DecodeError) Error() string {
	return "decode response body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Response returns a copy of the response whose body failed to decode.
func (e *DecodeError) Response() Response { return e.resp.clone() }

// ServerError reports a non-200 response that carried server diagnostics.
// Its message is the diagnostics joined by newlines.
type ServerError struct {
	StatusCode  int
	Diagnostics []string
	resp        Response
}

func (e *ServerError) Error() string {
	return strings.Join(e.Diagnostics, "\n")
}

// Response returns a copy of the diagnosed response.
func (e *ServerError) Response() Response { return e.resp.clone() }

// HTTPError reports any other non-200 response. Its message is the status
// line's message text.
type HTTPError struct {
	StatusCode int
	Status     string
	resp       Response
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("unexpected http status %d", e.StatusCode)
}

// Response returns a copy of the failing response.
func (e *HTTPError) Response() Response { return e.resp.clone() }
