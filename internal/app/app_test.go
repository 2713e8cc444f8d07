package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-cms-client/internal/config"
	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

// stubTransport returns one canned raw response.
type stubTransport struct {
	raw string
}

func (s stubTransport) RoundTrip(context.Context, *restclient.Request) (string, error) {
	return s.raw, nil
}

func newTestApp(t *testing.T, profilesYAML string) *App {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte(profilesYAML), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cfg := &config.Config{
		ProfilesFile:   path,
		SessionPath:    filepath.Join(dir, "sessions.db"),
		SessionTTL:     time.Hour,
		RequestTimeout: 30 * time.Second,
	}
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestProfileResolution(t *testing.T) {
	a := newTestApp(t, `
profiles:
  - name: staging
    url: https://staging.example.org/api
    default: true
  - name: local
    url: http://127.0.0.1:8080/api
`)

	p, err := a.Profile("")
	if err != nil || p.Name != "staging" {
		t.Fatalf("default resolution got %q err=%v", p.Name, err)
	}

	p, err = a.Profile("local")
	if err != nil || p.Name != "local" {
		t.Fatalf("named resolution got %q err=%v", p.Name, err)
	}

	if _, err := a.Profile("nope"); err == nil {
		t.Fatalf("expected unknown profile error")
	}

	a.cfg.DefaultProfile = "local"
	p, err = a.Profile("")
	if err != nil || p.Name != "local" {
		t.Fatalf("configured default got %q err=%v", p.Name, err)
	}
}

func TestRequestTimeoutPrefersProfileOverConfig(t *testing.T) {
	a := newTestApp(t, `
profiles:
  - name: pinned
    url: https://example.org/api
    timeout_seconds: 5
  - name: plain
    url: https://example.org/other
`)

	p, err := a.Profile("pinned")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got := a.requestTimeout(p); got != 5*time.Second {
		t.Fatalf("profile timeout should win, got %v", got)
	}

	p, err = a.Profile("plain")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got := a.requestTimeout(p); got != 30*time.Second {
		t.Fatalf("config default should apply, got %v", got)
	}
}

func TestBuildClientRejectsSessionAuthWithoutLogin(t *testing.T) {
	a := newTestApp(t, `
profiles:
  - name: staging
    url: https://staging.example.org/api
    auth:
      kind: session
      username: editor
      password: secret
`)

	p, err := a.Profile("staging")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if _, err := a.BuildClient(p); err == nil || !strings.Contains(err.Error(), "run login") {
		t.Fatalf("expected missing session error, got %v", err)
	}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/user/login":
			w.Write([]byte(`{"sessid":"abc123","session_name":"SESSx"}`))
		case "/api/user/logout":
			w.Write([]byte(`true`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := newTestApp(t, fmt.Sprintf(`
profiles:
  - name: staging
    url: %s/api
    auth:
      kind: session
      username: editor
      password: secret
`, srv.URL))

	p, err := a.Profile("staging")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if err := a.Login(context.Background(), p); err != nil {
		t.Fatalf("Login: %v", err)
	}

	auth, err := a.buildAuthenticator(p)
	if err != nil {
		t.Fatalf("buildAuthenticator after login: %v", err)
	}
	tok, ok := auth.(restclient.TokenAuth)
	if !ok || tok.Header != "Cookie" || tok.Token != "SESSx=abc123" {
		t.Fatalf("unexpected authenticator %#v", auth)
	}

	if err := a.Logout(context.Background(), p); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := a.buildAuthenticator(p); err == nil {
		t.Fatalf("expected missing session after logout")
	}
}

func TestLoginRejectsNonSessionProfiles(t *testing.T) {
	a := newTestApp(t, `
profiles:
  - name: open
    url: https://example.org/api
`)

	p, err := a.Profile("open")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if err := a.Login(context.Background(), p); err == nil {
		t.Fatalf("expected session auth requirement error")
	}
}

func TestDescribeErrorSummarizesHTMLPages(t *testing.T) {
	raw := "HTTP/1.1 403 Forbidden\r\nContent-Type: text/html\r\n\r\n" +
		"<html><head><title>Site</title></head><body><h1>Access denied</h1></body></html>"
	client, err := restclient.New(stubTransport{raw: raw}, restclient.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Get(context.Background(), "http://cms.example.org/node/1", nil)
	if err == nil {
		t.Fatalf("expected request error")
	}

	got := DescribeError(err)
	if !strings.Contains(got, "403") || !strings.Contains(got, "Access denied") {
		t.Fatalf("DescribeError = %q", got)
	}
}

func TestDescribeErrorReportsDiagnostics(t *testing.T) {
	raw := "HTTP/1.1 500 Internal Server Error\r\n" +
		"X-Drupal-Assertion-0: node%20save%20failed\r\n\r\n"
	client, err := restclient.New(stubTransport{raw: raw}, restclient.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Get(context.Background(), "http://cms.example.org/node", nil)
	got := DescribeError(err)
	if !strings.Contains(got, "500") || !strings.Contains(got, "node save failed") {
		t.Fatalf("DescribeError = %q", got)
	}
}

func TestRenderResult(t *testing.T) {
	out, err := RenderResult(map[string]any{"nid": float64(7)})
	if err != nil {
		t.Fatalf("RenderResult: %v", err)
	}
	if !strings.Contains(out, `"nid": 7`) {
		t.Fatalf("structured output = %q", out)
	}

	out, err = RenderResult("plain body")
	if err != nil || out != "plain body" {
		t.Fatalf("string output = %q err=%v", out, err)
	}

	out, err = RenderResult(nil)
	if err != nil || out != "" {
		t.Fatalf("nil output = %q err=%v", out, err)
	}
}

func TestSessionCookieRejectsIncompleteReply(t *testing.T) {
	if _, err := sessionCookie(map[string]any{"sessid": "abc"}); err == nil {
		t.Fatalf("expected missing session_name error")
	}
	if _, err := sessionCookie("not a map"); err == nil {
		t.Fatalf("expected type error")
	}
}
