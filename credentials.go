package credstore

import (
	"context"
	"fmt"
)

// Password is the store's password credential.
type Password struct {
	Name       string `json:"name"`
	Value      string `json:"value,omitempty"`
	Username   string `json:"username,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
	ID         string `json:"id,omitempty"`
	Status     string `json:"status,omitempty"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

// String omits Value.
func (p Password) String() string {
	return fmt.Sprintf("Password{Name: %s, Username: %s}", p.Name, p.Username)
}

// Key is the store's key credential. Value holds the base64 key bytes and
// Format the key's encoding, e.g. "PEM" or "PKCS8".
type Key struct {
	Name       string `json:"name"`
	Value      string `json:"value,omitempty"`
	Format     string `json:"format,omitempty"`
	Username   string `json:"username,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
	ID         string `json:"id,omitempty"`
	Status     string `json:"status,omitempty"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

// String omits Value.
func (k Key) String() string {
	return fmt.Sprintf("Key{Name: %s, Format: %s}", k.Name, k.Format)
}

func (c *Client) ReadPassword(ctx context.Context, namespace, name string) (Password, error) {
	return ReadAs[Password](ctx, c, namespace, TypePassword, name)
}

func (c *Client) WritePassword(ctx context.Context, namespace string, password Password) (Password, error) {
	return WriteAs(ctx, c, namespace, TypePassword, password)
}

func (c *Client) ReadKey(ctx context.Context, namespace, name string) (Key, error) {
	return ReadAs[Key](ctx, c, namespace, TypeKey, name)
}

func (c *Client) WriteKey(ctx context.Context, namespace string, key Key) (Key, error) {
	return WriteAs(ctx, c, namespace, TypeKey, key)
}
