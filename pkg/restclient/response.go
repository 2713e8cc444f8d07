package restclient

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// maxContinueFrames bounds how many 100-Continue frames Interpret will
// peel before declaring the response malformed. The wire format nests one
// full response inside the body of each Continue frame; without a bound a
// crafted response could recurse arbitrarily deep.
const maxContinueFrames = 10

var (
	statusLineRe = regexp.MustCompile(`^HTTP/1\.\d (\d{3}) (.*)`)
	assertionRe  = regexp.MustCompile(`(?m)^X-Drupal-Assertion-[0-9]+: (.*)$`)
)

// Response is the structured form of one raw HTTP response. It is
// immutable once built by Interpret; errors that carry one expose it as a
// value copy only.
type Response struct {
	// StatusCode and Status are zero/empty when the header block carried
	// no recognizable HTTP/1.x status line; callers must treat that as
	// "no usable status".
	StatusCode int
	Status     string

	// Headers is the raw header block, status line included, without the
	// trailing blank line.
	Headers string
	Body    string

	// Diagnostics holds server-embedded debug messages extracted from
	// X-Drupal-Assertion-<n> headers, in header order.
	Diagnostics []string
}

// HeaderValue scans the raw header block for the first header with the
// given name (case insensitive) and returns its value, or "" when absent.
func (r Response) HeaderValue(name string) string {
	for _, line := range strings.Split(r.Headers, "\r\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// clone returns a deep value copy so callers holding one cannot reach the
// interpreter's slices.
func (r Response) clone() Response {
	cp := r
	cp.Diagnostics = append([]string(nil), r.Diagnostics...)
	return cp
}

// Interpret parses a complete raw response (status line + headers + blank
// line + body) into a Response. 100-Continue frames are unwrapped: the
// body of such a frame is itself a full response and is re-interpreted,
// up to maxContinueFrames deep. A response without the CRLFCRLF
// header/body separator yields an *InterpretError carrying the raw text.
func Interpret(raw string) (Response, error) {
	return interpret(raw, 0)
}

func interpret(raw string, depth int) (Response, error) {
	if depth >= maxContinueFrames {
		return Response{}, &InterpretError{Reason: "too many 100 Continue frames", Raw: raw}
	}

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	if !ok {
		return Response{}, &InterpretError{Reason: "missing header/body separator", Raw: raw}
	}

	resp := Response{Headers: head, Body: body}

	for _, m := range assertionRe.FindAllStringSubmatch(head, -1) {
		resp.Diagnostics = append(resp.Diagnostics, decodeDiagnostic(m[1]))
	}

	if m := statusLineRe.FindStringSubmatch(head); m != nil {
		code, _ := strconv.Atoi(m[1])
		resp.StatusCode = code
		resp.Status = strings.TrimSpace(m[2])
		if code == http.StatusContinue {
			// The Continue frame's body is the real response; its own
			// headers (diagnostics included) are discarded with it.
			return interpret(body, depth+1)
		}
	}

	return resp, nil
}

// decodeDiagnostic turns one assertion header value into display text.
// The value is URL-decoded and then run through a deliberately restricted
// decoding: JSON when it parses, the decoded text otherwise. Header
// content is untrusted, so no general-purpose deserializer is involved.
func decodeDiagnostic(value string) string {
	value = strings.TrimSuffix(value, "\r")
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}

	var parsed any
	if err := json.Unmarshal([]byte(decoded), &parsed); err == nil {
		if s, ok := parsed.(string); ok {
			return s
		}
		if compact, err := json.Marshal(parsed); err == nil {
			return string(compact)
		}
	}
	return decoded
}
