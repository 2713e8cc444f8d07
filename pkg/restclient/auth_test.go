package restclient

import (
	"errors"
	"testing"
)

func TestBasicAuthSetsAuthorizationHeader(t *testing.T) {
	req := NewGet("http://example.com", nil)
	auth := BasicAuth{Username: "user", Password: "pass"}
	if err := auth.Authenticate(req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := req.HeaderValue("Authorization"); got != "Basic dXNlcjpwYXNz" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestTokenAuthDefaultsToAuthorizationHeader(t *testing.T) {
	req := NewGet("http://example.com", nil)
	if err := (TokenAuth{Token: "abc123"}).Authenticate(req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := req.HeaderValue("Authorization"); got != "abc123" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestTokenAuthSendsSessionCookie(t *testing.T) {
	req := NewGet("http://example.com", nil)
	auth := TokenAuth{Header: "Cookie", Token: "SESS1234=abcd"}
	if err := auth.Authenticate(req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := req.HeaderValue("Cookie"); got != "SESS1234=abcd" {
		t.Fatalf("Cookie = %q", got)
	}
}

func TestHeaderMutatorReplacesAndAppends(t *testing.T) {
	req := NewGet("http://example.com", nil)
	req.SetHeader("Accept", "text/html")

	m := HeaderMutator{Headers: []Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "X-CSRF-Token", Value: "tok"},
	}}
	if err := m.AlterRequest(req); err != nil {
		t.Fatalf("alter: %v", err)
	}
	if got := req.HeaderValue("Accept"); got != "application/json" {
		t.Fatalf("Accept = %q", got)
	}
	if got := req.HeaderValue("X-CSRF-Token"); got != "tok" {
		t.Fatalf("X-CSRF-Token = %q", got)
	}
	if len(req.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(req.Headers))
	}
}

// failingMutator always errors, for chain short-circuit checks.
type failingMutator struct{ err error }

func (m failingMutator) AlterRequest(*Request) error { return m.err }

// markMutator appends its tag to a shared trace.
type markMutator struct {
	tag   string
	trace *[]string
}

func (m markMutator) AlterRequest(*Request) error {
	*m.trace = append(*m.trace, m.tag)
	return nil
}

func TestChainMutatorsAppliesInOrder(t *testing.T) {
	var trace []string
	chain := ChainMutators(
		markMutator{tag: "first", trace: &trace},
		nil,
		markMutator{tag: "second", trace: &trace},
	)
	if err := chain.AlterRequest(NewGet("http://example.com", nil)); err != nil {
		t.Fatalf("alter: %v", err)
	}
	if len(trace) != 2 || trace[0] != "first" || trace[1] != "second" {
		t.Fatalf("unexpected order: %v", trace)
	}
}

func TestChainMutatorsStopsOnError(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	chain := ChainMutators(
		failingMutator{err: boom},
		markMutator{tag: "unreached", trace: &trace},
	)
	if err := chain.AlterRequest(NewGet("http://example.com", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected chain to surface the first error, got %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("later mutators must not run after a failure: %v", trace)
	}
}
