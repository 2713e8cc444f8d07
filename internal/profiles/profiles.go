package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported transports.
	TransportResty  = "resty"
	TransportSocket = "socket"

	// Supported body formats.
	FormatJSON = "json"
	FormatGob  = "gob"
	FormatNone = "none"

	// Supported auth kinds.
	AuthNone    = "none"
	AuthBasic   = "basic"
	AuthToken   = "token"
	AuthSession = "session"

	defaultLoginPath = "user/login"
)

// configFile represents the structure of the profiles configuration file.
type configFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Profile is a single server connection declared in config files.
type Profile struct {
	Name           string            `json:"name" yaml:"name"`
	URL            string            `json:"url" yaml:"url"`
	Transport      string            `json:"transport" yaml:"transport"`
	Format         string            `json:"format" yaml:"format"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	Default        bool              `json:"default" yaml:"default"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	Auth           *AuthConfig       `json:"auth" yaml:"auth"`
}

// AuthConfig holds per-profile credentials. Fields beyond Kind apply only
// to the kinds that read them.
type AuthConfig struct {
	Kind      string `json:"kind" yaml:"kind"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password" yaml:"password"`
	Header    string `json:"header" yaml:"header"`
	Token     string `json:"token" yaml:"token"`
	LoginPath string `json:"login_path" yaml:"login_path"`
}

// Timeout returns the profile timeout as a duration, zero when the
// profile leaves it unset.
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Endpoint joins the profile base URL with a service path.
func (p Profile) Endpoint(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return p.URL
	}
	return p.URL + "/" + path
}

// Registry materializes profile definitions loaded from config files.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// LoadRegistry loads the profile registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	fileReg, err := parseProfileRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(fileReg.Profiles)),
		idx:      make(map[string]Profile, len(fileReg.Profiles)),
	}

	seenDefault := false
	for i := range fileReg.Profiles {
		p := sanitizeProfile(fileReg.Profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.Name]; exists {
			return nil, fmt.Errorf("duplicate profile name %q", p.Name)
		}
		if p.Default {
			if seenDefault {
				return nil, fmt.Errorf("profile %q: more than one profile marked default", p.Name)
			}
			seenDefault = true
		}
		reg.profiles[i] = p
		reg.idx[p.Name] = p
	}

	return reg, nil
}

// parseProfileRegistry attempts to decode the profiles file content.
func parseProfileRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalProfileRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

// unmarshalProfileRegistry decodes the profiles file using the provided function.
func unmarshalProfileRegistry(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s profiles: %w", name, err)
	}
	return reg, nil
}

// sanitizeProfile trims and normalizes the profile fields.
func sanitizeProfile(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimRight(strings.TrimSpace(p.URL), "/")

	p.Transport = strings.ToLower(strings.TrimSpace(p.Transport))
	if p.Transport == "" {
		p.Transport = TransportResty
	}
	p.Format = strings.ToLower(strings.TrimSpace(p.Format))
	if p.Format == "" {
		p.Format = FormatJSON
	}
	if p.TimeoutSeconds < 0 {
		p.TimeoutSeconds = 0
	}
	p.Headers = sanitizeHeaders(p.Headers)

	if p.Auth != nil {
		a := *p.Auth
		a.Kind = strings.ToLower(strings.TrimSpace(a.Kind))
		if a.Kind == "" {
			a.Kind = AuthNone
		}
		a.Username = strings.TrimSpace(a.Username)
		a.Header = strings.TrimSpace(a.Header)
		a.Token = strings.TrimSpace(a.Token)
		a.LoginPath = strings.Trim(strings.TrimSpace(a.LoginPath), "/")
		if a.Kind == AuthSession && a.LoginPath == "" {
			a.LoginPath = defaultLoginPath
		}
		p.Auth = &a
	}

	return p
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateProfile checks that required fields are present.
func validateProfile(p Profile) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.URL == "" {
		return fmt.Errorf("url is required for profile %q", p.Name)
	}
	if p.Transport != TransportResty && p.Transport != TransportSocket {
		return fmt.Errorf("unknown transport %q for profile %q", p.Transport, p.Name)
	}
	if p.Format != FormatJSON && p.Format != FormatGob && p.Format != FormatNone {
		return fmt.Errorf("unknown format %q for profile %q", p.Format, p.Name)
	}
	if p.Auth == nil {
		return nil
	}
	switch p.Auth.Kind {
	case AuthNone:
	case AuthBasic:
		if p.Auth.Username == "" {
			return fmt.Errorf("auth.username is required for profile %q", p.Name)
		}
	case AuthToken:
		if p.Auth.Token == "" {
			return fmt.Errorf("auth.token is required for profile %q", p.Name)
		}
	case AuthSession:
		if p.Auth.Username == "" || p.Auth.Password == "" {
			return fmt.Errorf("auth.username and auth.password are required for profile %q", p.Name)
		}
	default:
		return fmt.Errorf("unknown auth kind %q for profile %q", p.Auth.Kind, p.Name)
	}
	return nil
}

// ByName returns the profile config by name.
func (r *Registry) ByName(name string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[name]
	return p, ok
}

// All returns all configured profiles.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Default returns the profile marked default, or the only profile when
// just one is configured.
func (r *Registry) Default() (Profile, bool) {
	all := r.All()
	for _, p := range all {
		if p.Default {
			return p, true
		}
	}
	if len(all) == 1 {
		return all[0], true
	}
	return Profile{}, false
}
