package credstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReadCredential builds a one-off Client from binding and reads one
// credential. Prefer a long-lived Client when issuing many calls.
func ReadCredential(ctx context.Context, binding Binding, namespace, credentialType, name string) (json.RawMessage, error) {
	c, err := New(binding)
	if err != nil {
		return nil, err
	}
	return c.Read(ctx, namespace, credentialType, name)
}

// WriteCredential builds a one-off Client from binding and writes one
// credential, returning the store's confirmation.
func WriteCredential(ctx context.Context, binding Binding, namespace, credentialType string, credential any) (json.RawMessage, error) {
	c, err := New(binding)
	if err != nil {
		return nil, err
	}
	return c.Write(ctx, namespace, credentialType, credential)
}

// DeleteCredential builds a one-off Client from binding and deletes one
// credential.
func DeleteCredential(ctx context.Context, binding Binding, namespace, credentialType, name string) error {
	c, err := New(binding)
	if err != nil {
		return err
	}
	return c.Delete(ctx, namespace, credentialType, name)
}

// ReadAs reads a credential and decodes it into T.
func ReadAs[T any](ctx context.Context, c *Client, namespace, credentialType, name string) (T, error) {
	var out T
	raw, err := c.Read(ctx, namespace, credentialType, name)
	if err != nil {
		return out, err
	}
	return decode[T](raw)
}

// WriteAs writes credential and decodes the store's confirmation into T.
func WriteAs[T any](ctx context.Context, c *Client, namespace, credentialType string, credential T) (T, error) {
	var out T
	raw, err := c.Write(ctx, namespace, credentialType, credential)
	if err != nil {
		return out, err
	}
	return decode[T](raw)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: decode into %T: %w", ErrInvalidPayload, out, err)
	}
	return out, nil
}
