package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-cms-client/internal/config"
	"github.com/samvad-hq/samvad-cms-client/internal/htmlmsg"
	"github.com/samvad-hq/samvad-cms-client/internal/logger"
	"github.com/samvad-hq/samvad-cms-client/internal/profiles"
	"github.com/samvad-hq/samvad-cms-client/internal/session"
	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
	"github.com/samvad-hq/samvad-cms-client/pkg/transports"
)

// App wires profiles, sessions and the client library together for the
// command layer.
type App struct {
	cfg        *config.Config
	registry   *profiles.Registry
	transports transports.Registry
	store      session.Store
	log        restclient.Logger
}

// New loads the profile registry and opens the session store.
func New(cfg *config.Config, log restclient.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.Adapter{}
	}

	registry, err := profiles.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles registry: %w", err)
	}
	profileList := registry.All()
	names := make([]string, 0, len(profileList))
	for _, p := range profileList {
		names = append(names, p.Name)
	}
	log.InfoObj("profiles registry loaded", "profiles_meta", map[string]any{
		"count": len(names),
		"names": names,
	})

	store, err := session.NewStore(cfg.SessionPath, session.Options{TTL: cfg.SessionTTL})
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	log.DebugObj("session store initialized", "session_config", map[string]any{
		"path":        cfg.SessionPath,
		"ttl_seconds": int(cfg.SessionTTL.Seconds()),
	})

	return &App{
		cfg:        cfg,
		registry:   registry,
		transports: transports.DefaultRegistry(),
		store:      store,
		log:        log,
	}, nil
}

// Close releases the session store, logging any errors encountered.
func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("session store close failed", "error", err.Error())
	}
}

// Profile resolves a profile by name, falling back to the configured
// default and then to the registry default.
func (a *App) Profile(name string) (profiles.Profile, error) {
	if name == "" {
		name = a.cfg.DefaultProfile
	}
	if name != "" {
		p, ok := a.registry.ByName(name)
		if !ok {
			return profiles.Profile{}, fmt.Errorf("unknown profile %q", name)
		}
		return p, nil
	}
	p, ok := a.registry.Default()
	if !ok {
		return profiles.Profile{}, errors.New("no profile selected and none marked default")
	}
	return p, nil
}

// BuildClient assembles a client for the profile: transport, body format,
// credentials and the standing request mutators.
func (a *App) BuildClient(p profiles.Profile) (*restclient.Client, error) {
	transport, err := a.transports.TransportFor(p.Transport, a.requestTimeout(p))
	if err != nil {
		return nil, err
	}
	format, err := buildFormat(p)
	if err != nil {
		return nil, err
	}
	auth, err := a.buildAuthenticator(p)
	if err != nil {
		return nil, err
	}

	return restclient.New(transport, restclient.Options{
		Format:        format,
		Authenticator: auth,
		Mutator:       buildMutator(p, a.log),
		Logger:        a.log,
	})
}

// Login authenticates against the profile's login endpoint and stores the
// returned session cookie.
func (a *App) Login(ctx context.Context, p profiles.Profile) error {
	if p.Auth == nil || p.Auth.Kind != profiles.AuthSession {
		return fmt.Errorf("profile %q does not use session auth", p.Name)
	}

	client, err := a.sessionClient(p, "")
	if err != nil {
		return err
	}

	body := map[string]any{
		"username": p.Auth.Username,
		"password": p.Auth.Password,
	}
	data, err := client.Post(ctx, p.Endpoint(p.Auth.LoginPath), body, nil)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}

	cookie, err := sessionCookie(data)
	if err != nil {
		return err
	}
	if err := a.store.Save(p.Name, cookie); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	a.log.InfoObj("session established", "login_meta", map[string]any{
		"profile": p.Name,
		"url":     p.Endpoint(p.Auth.LoginPath),
	})
	return nil
}

// Logout drops the stored session for the profile. The server side logout
// is best effort; the local cookie goes away regardless.
func (a *App) Logout(ctx context.Context, p profiles.Profile) error {
	if p.Auth != nil && p.Auth.Kind == profiles.AuthSession {
		if cookie, found, err := a.store.Get(p.Name); err == nil && found {
			if client, err := a.sessionClient(p, cookie); err == nil {
				if _, err := client.Post(ctx, p.Endpoint(logoutPath(p)), nil, nil); err != nil {
					a.log.WarnObj("server side logout failed", "error", err.Error())
				}
			}
		}
	}
	if err := a.store.Delete(p.Name); err != nil {
		return fmt.Errorf("drop session: %w", err)
	}
	return nil
}

// sessionClient builds a JSON client for the login endpoints, optionally
// presenting an existing cookie.
func (a *App) sessionClient(p profiles.Profile, cookie string) (*restclient.Client, error) {
	transport, err := a.transports.TransportFor(p.Transport, a.requestTimeout(p))
	if err != nil {
		return nil, err
	}
	opts := restclient.Options{Format: restclient.JSONFormat{}, Logger: a.log}
	if cookie != "" {
		opts.Authenticator = restclient.TokenAuth{Header: "Cookie", Token: cookie}
	}
	return restclient.New(transport, opts)
}

// requestTimeout resolves the transport timeout for a profile: the
// profile's own timeout when set, the configured default otherwise.
func (a *App) requestTimeout(p profiles.Profile) time.Duration {
	if d := p.Timeout(); d > 0 {
		return d
	}
	return a.cfg.RequestTimeout
}

func buildFormat(p profiles.Profile) (restclient.Format, error) {
	switch p.Format {
	case profiles.FormatJSON:
		return restclient.JSONFormat{}, nil
	case profiles.FormatGob:
		return restclient.GobFormat{}, nil
	case profiles.FormatNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown format %q", p.Format)
	}
}

func (a *App) buildAuthenticator(p profiles.Profile) (restclient.Authenticator, error) {
	if p.Auth == nil || p.Auth.Kind == profiles.AuthNone {
		return nil, nil
	}
	switch p.Auth.Kind {
	case profiles.AuthBasic:
		return restclient.BasicAuth{Username: p.Auth.Username, Password: p.Auth.Password}, nil
	case profiles.AuthToken:
		return restclient.TokenAuth{Header: p.Auth.Header, Token: p.Auth.Token}, nil
	case profiles.AuthSession:
		cookie, found, err := a.store.Get(p.Name)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("no session for profile %q, run login first", p.Name)
		}
		return restclient.TokenAuth{Header: "Cookie", Token: cookie}, nil
	default:
		return nil, fmt.Errorf("unknown auth kind %q", p.Auth.Kind)
	}
}

// buildMutator applies the profile's standing headers in a stable order,
// then logs the outbound request.
func buildMutator(p profiles.Profile, log restclient.Logger) restclient.Mutator {
	var headers restclient.Mutator
	if len(p.Headers) > 0 {
		names := make([]string, 0, len(p.Headers))
		for name := range p.Headers {
			names = append(names, name)
		}
		sort.Strings(names)

		hs := make([]restclient.Header, 0, len(names))
		for _, name := range names {
			hs = append(hs, restclient.Header{Name: name, Value: p.Headers[name]})
		}
		headers = restclient.HeaderMutator{Headers: hs}
	}
	return restclient.ChainMutators(headers, restclient.LogMutator{Log: log})
}

// sessionCookie extracts the session cookie from a login reply.
func sessionCookie(data any) (string, error) {
	reply, ok := data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("unexpected login reply of type %T", data)
	}
	name, _ := reply["session_name"].(string)
	id, _ := reply["sessid"].(string)
	if name == "" || id == "" {
		return "", errors.New("login reply carries no session_name/sessid pair")
	}
	return name + "=" + id, nil
}

// logoutPath derives the logout endpoint from the profile's login path.
func logoutPath(p profiles.Profile) string {
	dir := path.Dir(p.Auth.LoginPath)
	if dir == "." || dir == "/" {
		return "user/logout"
	}
	return dir + "/logout"
}

// DescribeError renders a request error for terminal display, summarizing
// HTML error pages down to their message.
func DescribeError(err error) string {
	var (
		serverErr *restclient.ServerError
		httpErr   *restclient.HTTPError
		decodeErr *restclient.DecodeError
	)
	switch {
	case errors.As(err, &serverErr):
		return fmt.Sprintf("server reported %d: %s", serverErr.StatusCode, serverErr.Error())
	case errors.As(err, &httpErr):
		resp := httpErr.Response()
		if summary := htmlSummary(resp); summary != "" {
			return fmt.Sprintf("http %d %s: %s", httpErr.StatusCode, httpErr.Error(), summary)
		}
		return fmt.Sprintf("http %d %s", httpErr.StatusCode, httpErr.Error())
	case errors.As(err, &decodeErr):
		if summary := htmlSummary(decodeErr.Response()); summary != "" {
			return fmt.Sprintf("%s (server said: %s)", decodeErr.Error(), summary)
		}
		return decodeErr.Error()
	default:
		return err.Error()
	}
}

func htmlSummary(resp restclient.Response) string {
	if !strings.Contains(resp.HeaderValue("Content-Type"), "text/html") {
		return ""
	}
	return htmlmsg.Summarize(resp.Body)
}

// RenderResult renders a call result for stdout. Structured data prints as
// indented JSON; plain strings pass through unchanged.
func RenderResult(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render result: %w", err)
		}
		return string(out), nil
	}
}
