package transports

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

// Built-in transport names. Profiles refer to transports by these strings.
const (
	NameResty  = "resty"
	NameSocket = "socket"
)

// Builder constructs a transport with the given default timeout.
type Builder func(timeout time.Duration) restclient.Transport

// Registry resolves transport names to builders. Callers can register
// additional transports alongside the built-in ones.
type Registry interface {
	Register(name string, build Builder)
	TransportFor(name string, timeout time.Duration) (restclient.Transport, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry builds a registry seeded with the provided builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{builders: make(map[string]Builder, len(builders))}
	for name, build := range builders {
		r.Register(name, build)
	}
	return r
}

// Register adds or replaces a builder. Names are case-insensitive.
func (r *registry) Register(name string, build Builder) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || build == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[key] = build
}

// TransportFor constructs the named transport.
func (r *registry) TransportFor(name string, timeout time.Duration) (restclient.Transport, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("no transport name given")
	}

	r.mu.RLock()
	build := r.builders[key]
	r.mu.RUnlock()

	if build == nil {
		return nil, fmt.Errorf("unknown transport %q", name)
	}
	return build(timeout), nil
}

// DefaultRegistry returns a registry with the built-in transports.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		NameResty: func(timeout time.Duration) restclient.Transport {
			return NewRestyTransport(timeout)
		},
		NameSocket: func(timeout time.Duration) restclient.Transport {
			return NewSocketTransport(timeout)
		},
	})
}
