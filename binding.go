package credstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hengadev/credstore/internal/storeerr"
	"github.com/hengadev/errsx"
)

// Binding is everything needed to talk to one credential store instance.
// It is a plain value: the client reads it and never mutates it.
//
// Field names follow the service binding the platform injects:
//
//	{
//	  "url": "https://credstore.example.com/api/v1/credentials",
//	  "username": "...",
//	  "password": "...",
//	  "encryption": {
//	    "client_private_key": "MIIEvQIBADANBg...",
//	    "server_public_key": "MIIBIjANBgkqhk..."
//	  }
//	}
//
// Both keys are bare base64 PEM bodies; armored PEM is accepted too.
type Binding struct {
	URL        string     `json:"url" yaml:"url"`
	Username   string     `json:"username" yaml:"username"`
	Password   string     `json:"password" yaml:"password"`
	Encryption Encryption `json:"encryption" yaml:"encryption"`
}

// Encryption holds the two halves of the envelope key material: the caller's
// private key opens responses, the store's public key seals requests.
type Encryption struct {
	ClientPrivateKey string `json:"client_private_key" yaml:"client_private_key"`
	ServerPublicKey  string `json:"server_public_key" yaml:"server_public_key"`
}

// Validate checks that every field is present and the URL is absolute.
// All problems are reported together.
func (b Binding) Validate() error {
	var errs errsx.Map

	if strings.TrimSpace(b.URL) == "" {
		errs.Set("url", storeerr.NewMissingFieldError("url"))
	} else if u, err := url.Parse(b.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs.Set("url", fmt.Errorf("%w: 'url' must be an absolute URL", ErrInvalidConfiguration))
	}
	if b.Username == "" {
		errs.Set("username", storeerr.NewMissingFieldError("username"))
	}
	if b.Password == "" {
		errs.Set("password", storeerr.NewMissingFieldError("password"))
	}
	if strings.TrimSpace(b.Encryption.ClientPrivateKey) == "" {
		errs.Set("encryption.client_private_key", storeerr.NewMissingFieldError("encryption.client_private_key"))
	}
	if strings.TrimSpace(b.Encryption.ServerPublicKey) == "" {
		errs.Set("encryption.server_public_key", storeerr.NewMissingFieldError("encryption.server_public_key"))
	}

	if !errs.IsEmpty() {
		return fmt.Errorf("%w: binding: %w", ErrInvalidConfiguration, errs.AsError())
	}
	return nil
}

// String hides the password and key material.
func (b Binding) String() string {
	return fmt.Sprintf("Binding{URL: %s, Username: %s}", b.URL, b.Username)
}

// endpoint joins the base URL and the credential type.
func (b Binding) endpoint(credentialType string) string {
	return strings.TrimRight(b.URL, "/") + "/" + url.PathEscape(credentialType)
}

// namedEndpoint adds the percent-encoded name query. Spaces become %20, not
// "+", so stores decoding per RFC 3986 read the same name.
func (b Binding) namedEndpoint(credentialType, name string) string {
	return b.endpoint(credentialType) + "?name=" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
