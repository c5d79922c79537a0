// Package auth provides Axonius REST API authentication.
package auth

import "net/http"

// Credentials holds an Axonius API key pair.
type Credentials struct {
	Key    string
	Secret string
}

// Apply adds authentication headers to an HTTP request.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	req.Header.Set("api-key", c.Key)
	req.Header.Set("api-secret", c.Secret)
}

// Valid reports whether credentials are configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.Key != "" && c.Secret != ""
}
