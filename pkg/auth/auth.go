// Package auth provides authentication support for HTTP requests.
package auth

import (
	"fmt"
	"net/http"
	"os"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// BasicAuthType represents HTTP Basic Authentication.
	BasicAuthType Type = "basic"
	// BearerAuthType represents Bearer token authentication.
	BearerAuthType Type = "bearer"
	// NoneAuthType represents unauthenticated requests.
	NoneAuthType Type = "none"
)

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// None is a no-op authenticator for indexes that do not require credentials.
type None struct{}

// Apply leaves the request unchanged.
func (None) Apply(*http.Request) error { return nil }

// Type returns the authentication type (NoneAuthType).
func (None) Type() Type { return NoneAuthType }

// FromEnv resolves a Bearer authenticator from the named environment
// variable. The variable is expected to hold the raw index token; it is how
// secret-sourced credentials reach the publisher without ever being written
// to a config file.
func FromEnv(envVar string) (Authenticator, error) {
	if envVar == "" {
		return None{}, nil
	}
	token, ok := os.LookupEnv(envVar)
	if !ok {
		return nil, fmt.Errorf("credential environment variable %s is not set", envVar)
	}
	if token == "" {
		return nil, fmt.Errorf("credential environment variable %s is empty", envVar)
	}
	return BearerAuth{Token: token}, nil
}
