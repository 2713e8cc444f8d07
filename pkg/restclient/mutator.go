package restclient

// HeaderMutator injects a fixed set of headers into every request, in the
// order given. Existing headers with the same name are replaced.
type HeaderMutator struct {
	Headers []Header
}

// AlterRequest applies the configured headers.
func (m HeaderMutator) AlterRequest(req *Request) error {
	for _, h := range m.Headers {
		req.SetHeader(h.Name, h.Value)
	}
	return nil
}

// LogMutator logs each outbound request before authentication and
// dispatch.
type LogMutator struct {
	Log Logger
}

// AlterRequest logs the request and leaves it unchanged.
func (m LogMutator) AlterRequest(req *Request) error {
	ensureLogger(m.Log).DebugObj("outbound request", "request_meta", map[string]any{
		"method":       req.Method,
		"url":          req.RenderURL(),
		"header_count": len(req.Headers),
		"has_body":     req.Body != nil,
	})
	return nil
}

// mutatorChain runs several mutators as one, in order.
type mutatorChain struct {
	mutators []Mutator
}

// ChainMutators composes mutators into a single Mutator that applies each
// in the order given. Nil entries are skipped.
func ChainMutators(mutators ...Mutator) Mutator {
	chain := make([]Mutator, 0, len(mutators))
	for _, m := range mutators {
		if m != nil {
			chain = append(chain, m)
		}
	}
	return mutatorChain{mutators: chain}
}

// AlterRequest applies every chained mutator, stopping at the first error.
func (c mutatorChain) AlterRequest(req *Request) error {
	for _, m := range c.mutators {
		if err := m.AlterRequest(req); err != nil {
			return err
		}
	}
	return nil
}
