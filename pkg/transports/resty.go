package transports

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

// RestyTransport dispatches requests through a shared resty.Client and
// re-frames each reply as raw response text for the interpreter.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a RestyTransport with the specified default
// timeout. A zero timeout means no limit.
func NewRestyTransport(timeout time.Duration) *RestyTransport {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetAllowGetMethodPayload(true)
	return &RestyTransport{client: c}
}

// RoundTrip sends the request and rebuilds the reply as raw response text:
// status line, header lines, a blank line, then the body. Header names come
// back canonicalized and sorted; repeated values keep their received order.
func (t *RestyTransport) RoundTrip(ctx context.Context, req *restclient.Request) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d, ok := callTimeout(req.Options); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	r := t.client.R().SetContext(ctx)
	for _, h := range req.Headers {
		r.SetHeader(h.Name, h.Value)
	}
	if len(req.Payload) > 0 {
		r.SetBody(req.Payload)
	}

	resp, err := r.Execute(req.Method, req.RenderURL())
	if err != nil {
		return "", err
	}
	return renderRaw(resp), nil
}

func renderRaw(resp *resty.Response) string {
	var b strings.Builder
	b.WriteString(resp.Proto())
	b.WriteString(" ")
	b.WriteString(resp.Status())
	b.WriteString("\r\n")

	header := resp.Header()
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range header[name] {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\r\n")
		}
	}

	b.WriteString("\r\n")
	b.Write(resp.Body())
	return b.String()
}
