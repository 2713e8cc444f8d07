package transports

import (
	"time"

	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

// callTimeout extracts a per-call timeout override from request options.
func callTimeout(opts map[string]any) (time.Duration, bool) {
	d, ok := opts[restclient.OptionTimeout].(time.Duration)
	return d, ok && d > 0
}
