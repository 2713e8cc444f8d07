package restclient

import "encoding/base64"

// BasicAuth authenticates requests with an HTTP Basic Authorization
// header.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate sets the Authorization header from the configured
// credentials.
func (a BasicAuth) Authenticate(req *Request) error {
	cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	req.SetHeader("Authorization", "Basic "+cred)
	return nil
}

// TokenAuth places a fixed token in a header of choice. Header defaults
// to Authorization; set it to Cookie to send a session cookie.
type TokenAuth struct {
	Header string
	Token  string
}

// Authenticate sets the configured header to the token value.
func (a TokenAuth) Authenticate(req *Request) error {
	name := a.Header
	if name == "" {
		name = "Authorization"
	}
	req.SetHeader(name, a.Token)
	return nil
}
