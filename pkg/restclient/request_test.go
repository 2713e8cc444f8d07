package restclient

import "testing"

func TestEncodeComponentKeepsSpacesAndTilde(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"hello world", "hello world"},
		{"a~b", "a~b"},
		{"k&v=x?y", "k%26v%3Dx%3Fy"},
		{"50%", "50%25"},
		{"a+b", "a%2Bb"},
	}
	for _, tc := range cases {
		if got := EncodeComponent(tc.in); got != tc.want {
			t.Fatalf("EncodeComponent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParamsEncodePreservesInsertionOrder(t *testing.T) {
	params := Params{
		{Key: "zeta", Value: "1"},
		{Key: "alpha", Value: "two words"},
		{Key: "mid", Value: "x"},
	}
	want := "zeta=1&alpha=two words&mid=x"
	if got := params.Encode(); got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestParamsEncodeExpandsArrays(t *testing.T) {
	params := Params{
		{Key: "k", List: []string{"a", "b"}},
		{Key: "single", Value: "v"},
	}
	want := "k[]=a&k[]=b&single=v"
	if got := params.Encode(); got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestRenderURLWithoutParamsIsUnchanged(t *testing.T) {
	req := NewGet("http://example.com/node/1", nil)
	if got := req.RenderURL(); got != "http://example.com/node/1" {
		t.Fatalf("RenderURL() = %q, want base URL unchanged", got)
	}
}

func TestRenderURLIsStableAcrossCalls(t *testing.T) {
	req := NewGet("http://example.com/node", Params{
		{Key: "q", Value: "a b"},
		{Key: "tags", List: []string{"x", "y"}},
	})
	first := req.RenderURL()
	want := "http://example.com/node?q=a b&tags[]=x&tags[]=y"
	if first != want {
		t.Fatalf("RenderURL() = %q, want %q", first, want)
	}
	for i := 0; i < 3; i++ {
		if got := req.RenderURL(); got != first {
			t.Fatalf("RenderURL() changed on call %d: %q vs %q", i+2, got, first)
		}
	}
}

func TestSetHeaderReplacesCaseInsensitive(t *testing.T) {
	req := NewPost("http://example.com", "body", nil)
	req.AddHeader("content-type", "text/plain")
	req.SetHeader("Content-Type", "application/json")

	if len(req.Headers) != 1 {
		t.Fatalf("expected 1 header after replace, got %d", len(req.Headers))
	}
	if got := req.HeaderValue("CONTENT-TYPE"); got != "application/json" {
		t.Fatalf("HeaderValue = %q, want replaced value", got)
	}
}
