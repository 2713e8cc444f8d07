package transports

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

// SocketTransport speaks HTTP/1.0 over a raw TCP connection and returns
// the reply exactly as received, preliminary 100 Continue frames included.
// It exists for servers and proxies whose replies an engine-managed client
// would normalize away.
type SocketTransport struct {
	// Timeout bounds the whole call, dial included, when neither the
	// context nor the request options carry a deadline. Zero means no
	// limit.
	Timeout time.Duration

	dialer net.Dialer
}

// NewSocketTransport creates a SocketTransport with the specified default
// timeout.
func NewSocketTransport(timeout time.Duration) *SocketTransport {
	return &SocketTransport{Timeout: timeout}
}

// RoundTrip dials the target host, writes the request and reads the
// connection to EOF. Requests go out as HTTP/1.0 with Connection: close so
// replies arrive unchunked and the server closes when done. Headers are
// written verbatim in request order.
func (t *SocketTransport) RoundTrip(ctx context.Context, req *restclient.Request) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d := t.Timeout
	if override, ok := callTimeout(req.Options); ok {
		d = override
	}
	if _, has := ctx.Deadline(); !has && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	target, err := url.Parse(req.RenderURL())
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	conn, err := t.dial(ctx, target)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := writeRequest(conn, req, target); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	data, err := io.ReadAll(conn)
	raw := string(data)
	if err != nil && raw == "" {
		return "", fmt.Errorf("read response: %w", err)
	}
	// A reply cut short mid-read still goes to the interpreter; the status
	// line and headers usually made it through.
	return raw, nil
}

func (t *SocketTransport) dial(ctx context.Context, target *url.URL) (net.Conn, error) {
	host := target.Hostname()
	port := target.Port()
	switch target.Scheme {
	case "http":
		if port == "" {
			port = "80"
		}
	case "https":
		if port == "" {
			port = "443"
		}
	default:
		return nil, fmt.Errorf("unsupported scheme %q", target.Scheme)
	}

	addr := net.JoinHostPort(host, port)
	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if target.Scheme != "https" {
		return conn, nil
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
	}
	return tlsConn, nil
}

func writeRequest(conn net.Conn, req *restclient.Request, target *url.URL) error {
	var b strings.Builder
	b.WriteString(req.Method)
	b.WriteString(" ")
	b.WriteString(target.RequestURI())
	b.WriteString(" HTTP/1.0\r\n")
	if req.HeaderValue("Host") == "" {
		b.WriteString("Host: ")
		b.WriteString(target.Host)
		b.WriteString("\r\n")
	}
	for _, h := range req.Headers {
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}
	if req.HeaderValue("Connection") == "" {
		b.WriteString("Connection: close\r\n")
	}
	b.WriteString("\r\n")

	if _, err := io.WriteString(conn, b.String()); err != nil {
		return err
	}
	if len(req.Payload) > 0 {
		if _, err := conn.Write(req.Payload); err != nil {
			return err
		}
	}
	return nil
}
