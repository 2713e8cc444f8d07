package restclient

import "context"

// Transport performs the network round trip for a prepared request and
// returns the complete raw response text: status line, header lines, a
// blank CRLF line, then the body. Implementations must deliver the
// request headers verbatim and preserve that blank-line framing; the
// interpreter depends on it. The connection (or equivalent handle) is
// scoped to the single call and must be released on every exit path.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (string, error)
}

// Format converts between application data and wire bytes. Implementations
// are stateless; a Format is injected at Client construction and read-only
// afterward.
type Format interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte) (any, error)
	MIMEType() string
}

// Authenticator adds credentials (headers or parameters) to a request
// before dispatch.
type Authenticator interface {
	Authenticate(req *Request) error
}

// Mutator performs arbitrary pre-flight edits on a request. It runs before
// the Authenticator, exactly once per call.
type Mutator interface {
	AlterRequest(req *Request) error
}
