package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Client drives one request/response round trip: mutation hook,
// authentication hook, body preparation, transport dispatch, raw response
// interpretation and outcome classification. Calls are synchronous and
// blocking; the configured collaborators are the only state shared across
// calls and are read-only after construction.
type Client struct {
	transport Transport
	format    Format
	auth      Authenticator
	mutator   Mutator
	log       Logger
}

// Options configures the optional Client collaborators. A nil Format means
// bodies travel as plain text and 200 responses return the raw body.
type Options struct {
	Format        Format
	Authenticator Authenticator
	Mutator       Mutator
	Logger        Logger
}

// New builds a Client around the given transport.
func New(transport Transport, opts Options) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	return &Client{
		transport: transport,
		format:    opts.Format,
		auth:      opts.Authenticator,
		mutator:   opts.Mutator,
		log:       ensureLogger(opts.Logger),
	}, nil
}

// Get executes a GET request against url.
func (c *Client) Get(ctx context.Context, url string, params Params) (any, error) {
	return c.Do(ctx, NewGet(url, params))
}

// Post executes a POST request carrying body.
func (c *Client) Post(ctx context.Context, url string, body any, params Params) (any, error) {
	return c.Do(ctx, NewPost(url, body, params))
}

// Put executes a PUT request carrying body.
func (c *Client) Put(ctx context.Context, url string, body any, params Params) (any, error) {
	return c.Do(ctx, NewPut(url, body, params))
}

// Delete executes a DELETE request against url.
func (c *Client) Delete(ctx context.Context, url string, params Params) (any, error) {
	return c.Do(ctx, NewDelete(url, params))
}

// Do runs the full pipeline for req. On a 200 response it returns the body
// deserialized through the configured Format, or the raw body string when
// no Format is set. Every other outcome surfaces as one of the error types
// in this package: *TransportError when the transport produced no response,
// *InterpretError when the raw response is malformed, *DecodeError when a
// 200 body fails to parse, *ServerError when the response carries
// diagnostics, and *HTTPError otherwise.
func (c *Client) Do(ctx context.Context, req *Request) (any, error) {
	if req == nil {
		return nil, errors.New("request must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.mutator != nil {
		if err := c.mutator.AlterRequest(req); err != nil {
			return nil, fmt.Errorf("alter request: %w", err)
		}
	}
	if c.auth != nil {
		if err := c.auth.Authenticate(req); err != nil {
			return nil, fmt.Errorf("authenticate request: %w", err)
		}
	}
	if err := c.prepareBody(req); err != nil {
		return nil, err
	}

	raw, err := c.transport.RoundTrip(ctx, req)
	if raw == "" && err != nil {
		// No response was produced; surface the transport failure before
		// anything tries to read response fields.
		return nil, &TransportError{Err: err}
	}

	resp, ierr := Interpret(raw)
	if ierr != nil {
		return nil, ierr
	}

	c.log.DebugObj("response interpreted", "response_meta", map[string]any{
		"method":      req.Method,
		"url":         req.RenderURL(),
		"status":      resp.StatusCode,
		"body_bytes":  len(resp.Body),
		"diagnostics": len(resp.Diagnostics),
	})

	return c.classify(resp)
}

// prepareBody serializes the request payload and stamps the body-related
// headers. With a Format the body goes through Serialize and the request
// gains the Format's Content-Type; without one the body is coerced to its
// textual form unchanged. Content-Length always matches the exact payload
// length, and the Expect header is cleared so the transport never
// negotiates 100-continue itself; the interpreter unwraps Continue frames
// instead.
func (c *Client) prepareBody(req *Request) error {
	if req.Body == nil {
		return nil
	}

	if c.format != nil {
		data, err := c.format.Serialize(req.Body)
		if err != nil {
			return fmt.Errorf("serialize request body: %w", err)
		}
		req.Payload = data
		req.SetHeader("Content-Type", c.format.MIMEType())
	} else {
		req.Payload = coerceText(req.Body)
	}

	req.SetHeader("Content-Length", strconv.Itoa(len(req.Payload)))
	req.SetHeader("Expect", "")
	return nil
}

// classify maps an interpreted response to the caller-facing outcome, in
// strict priority order: success, then diagnostics, then the generic
// status failure. Diagnostics must win over the generic message.
func (c *Client) classify(resp Response) (any, error) {
	if resp.StatusCode == http.StatusOK {
		if c.format == nil {
			return resp.Body, nil
		}
		data, err := c.format.Deserialize([]byte(resp.Body))
		if err != nil {
			return nil, &DecodeError{Err: err, resp: resp.clone()}
		}
		return data, nil
	}

	if len(resp.Diagnostics) > 0 {
		return nil, &ServerError{
			StatusCode:  resp.StatusCode,
			Diagnostics: append([]string(nil), resp.Diagnostics...),
			resp:        resp.clone(),
		}
	}

	return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, resp: resp.clone()}
}

// coerceText renders a formatless body in its textual form.
func coerceText(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}
