package restclient

import (
	"net/http"
	"net/url"
	"strings"
)

// Option keys recognized in Request.Options. Transports read the keys they
// understand and ignore the rest.
const (
	// OptionTimeout overrides the transport's default timeout for a single
	// call. The value must be a time.Duration.
	OptionTimeout = "timeout"
)

// Header is a single request or response header line.
type Header struct {
	Name  string
	Value string
}

// Param is one query parameter. A scalar param renders as key=value; when
// List is non-nil the param renders as repeated key[]=value entries, one
// per element, in element order.
type Param struct {
	Key   string
	Value string
	List  []string
}

// Params is an ordered parameter list. Encoding preserves insertion order.
type Params []Param

// Encode renders the parameter list as a query string. Keys and values are
// percent-encoded via EncodeComponent; pairs are joined with "&".
func (ps Params) Encode() string {
	pairs := make([]string, 0, len(ps))
	for _, p := range ps {
		if p.List != nil {
			key := EncodeComponent(p.Key) + "[]"
			for _, v := range p.List {
				pairs = append(pairs, key+"="+EncodeComponent(v))
			}
			continue
		}
		pairs = append(pairs, EncodeComponent(p.Key)+"="+EncodeComponent(p.Value))
	}
	return strings.Join(pairs, "&")
}

// EncodeComponent percent-encodes s for use in a query string. Reserved
// characters are escaped, '~' stays literal, and spaces stay literal
// spaces rather than '+' (classic OAuth-style rawurlencode semantics).
// Go's url.QueryEscape already leaves '~' alone, so only the '+' fix-up
// is needed; any '+' it emits can only have come from a space.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", " ")
}

// Request is the mutable value handed through the Mutator and
// Authenticator hooks and then to the Transport. It is owned by the call
// that created it; nothing retains it across calls.
type Request struct {
	Method  string
	URL     string
	Params  Params
	Headers []Header

	// Body is the application payload, present only for POST and PUT.
	// Payload is the serialized wire form, filled in by the Client during
	// body preparation; transports send Payload verbatim.
	Body    any
	Payload []byte

	// Options carries transport-specific overrides (see the Option*
	// constants). Transports ignore unknown keys.
	Options map[string]any
}

// NewGet builds a GET request for url with the given query parameters.
func NewGet(url string, params Params) *Request {
	return &Request{Method: http.MethodGet, URL: url, Params: params}
}

// NewPost builds a POST request carrying body.
func NewPost(url string, body any, params Params) *Request {
	return &Request{Method: http.MethodPost, URL: url, Params: params, Body: body}
}

// NewPut builds a PUT request carrying body.
func NewPut(url string, body any, params Params) *Request {
	return &Request{Method: http.MethodPut, URL: url, Params: params, Body: body}
}

// NewDelete builds a DELETE request for url.
func NewDelete(url string, params Params) *Request {
	return &Request{Method: http.MethodDelete, URL: url, Params: params}
}

// RenderURL returns the final URL: the base URL unchanged when no
// parameters are set, otherwise base + "?" + the encoded parameter pairs.
// It is a pure function of the request fields, so repeated calls are
// stable.
func (r *Request) RenderURL() string {
	if len(r.Params) == 0 {
		return r.URL
	}
	return r.URL + "?" + r.Params.Encode()
}

// SetHeader replaces the first header with the given name (case
// insensitive), or appends one when no match exists.
func (r *Request) SetHeader(name, value string) {
	for i := range r.Headers {
		if strings.EqualFold(r.Headers[i].Name, name) {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// AddHeader appends a header without replacing existing ones.
func (r *Request) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// HeaderValue returns the value of the first header with the given name
// (case insensitive), or "" when absent.
func (r *Request) HeaderValue(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
