package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/credstore/internal/envelope"
	"github.com/hengadev/credstore/internal/monitoring"
	"github.com/hengadev/credstore/internal/transport"
)

// Operation names reported to hooks, logs and metrics.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpDelete = "delete"
)

// Client talks to one credential store instance. Key material is parsed once
// in New and only read afterwards, so a Client is safe for concurrent use.
type Client struct {
	binding    Binding
	httpClient HTTPDoer
	encrypter  *envelope.Encrypter
	decrypter  *envelope.Decrypter
	hooks      []ObservabilityHook
	hook       ObservabilityHook
	now        func() time.Time
}

// New validates binding and parses its keys. A binding with missing fields
// fails with ErrInvalidConfiguration; unusable keys fail with
// ErrEncryptionFailed (store public key) or ErrDecryptionFailed (client
// private key). No request is made.
func New(binding Binding, opts ...ClientOption) (*Client, error) {
	if err := binding.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		binding:    binding,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	encrypter, err := envelope.NewEncrypter(binding.Encryption.ServerPublicKey, envelope.WithClock(c.now))
	if err != nil {
		return nil, fmt.Errorf("server public key: %w", err)
	}
	decrypter, err := envelope.NewDecrypter(binding.Encryption.ClientPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("client private key: %w", err)
	}
	c.encrypter = encrypter
	c.decrypter = decrypter

	switch len(c.hooks) {
	case 0:
		c.hook = &monitoring.NoOpObservabilityHook{}
	case 1:
		c.hook = c.hooks[0]
	default:
		c.hook = monitoring.NewCompositeObservabilityHook(c.hooks...)
	}
	return c, nil
}

// Binding returns the binding the client was built from.
func (c *Client) Binding() Binding {
	return c.binding
}

// Read fetches one credential and returns its decrypted JSON.
//
//	GET {url}/{type}?name={name}
//
// A missing credential surfaces as a *TransportError with StatusCode 404.
func (c *Client) Read(ctx context.Context, namespace, credentialType, name string) (json.RawMessage, error) {
	op := c.operation(OpRead, namespace, credentialType, name)
	return c.observe(ctx, op, func() (json.RawMessage, error) {
		if err := validateRequest(namespace, credentialType, name, true); err != nil {
			return nil, err
		}

		headers := transport.BuildHeaders(c.binding.Username, c.binding.Password, namespace, nil)
		return c.fetchAndDecrypt(ctx, http.MethodGet, c.binding.namedEndpoint(credentialType, name), headers, nil)
	})
}

// Write stores credential and returns the store's decrypted confirmation.
//
//	POST {url}/{type}   Content-Type: application/jose
//
// The request is sealed for the store's public key; the confirmation comes
// back sealed for the client's key pair and is opened with the client
// private key. credential may be any JSON-marshalable value; a
// json.RawMessage is sent as is after a validity check.
func (c *Client) Write(ctx context.Context, namespace, credentialType string, credential any) (json.RawMessage, error) {
	op := c.operation(OpWrite, namespace, credentialType, credentialName(credential))
	return c.observe(ctx, op, func() (json.RawMessage, error) {
		if err := validateRequest(namespace, credentialType, "", false); err != nil {
			return nil, err
		}

		plaintext, err := marshalCredential(credential)
		if err != nil {
			return nil, err
		}

		sealed, err := c.encrypter.Encrypt(plaintext)
		if err != nil {
			return nil, err
		}

		extra := http.Header{}
		extra.Set(transport.HeaderContentType, transport.ContentTypeJOSE)
		headers := transport.BuildHeaders(c.binding.Username, c.binding.Password, namespace, extra)
		return c.fetchAndDecrypt(ctx, http.MethodPost, c.binding.endpoint(credentialType), headers, []byte(sealed))
	})
}

// Delete removes one credential. The response body is ignored; only a
// status outside 2xx is an error.
//
//	DELETE {url}/{type}?name={name}
func (c *Client) Delete(ctx context.Context, namespace, credentialType, name string) error {
	op := c.operation(OpDelete, namespace, credentialType, name)
	_, err := c.observe(ctx, op, func() (json.RawMessage, error) {
		if err := validateRequest(namespace, credentialType, name, true); err != nil {
			return nil, err
		}

		headers := transport.BuildHeaders(c.binding.Username, c.binding.Password, namespace, nil)
		_, err := transport.Send(ctx, c.httpClient, http.MethodDelete, c.binding.namedEndpoint(credentialType, name), headers, nil)
		return nil, err
	})
	return err
}

// fetchAndDecrypt runs send, open and JSON check in order and stops at the
// first failure.
func (c *Client) fetchAndDecrypt(ctx context.Context, method, url string, headers http.Header, body []byte) (json.RawMessage, error) {
	payload, err := transport.Send(ctx, c.httpClient, method, url, headers, body)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.decrypter.Decrypt(string(payload))
	if err != nil {
		return nil, err
	}

	if !json.Valid(plaintext) {
		return nil, fmt.Errorf("%w: store response is not valid JSON", ErrInvalidPayload)
	}
	return json.RawMessage(plaintext), nil
}

func (c *Client) observe(ctx context.Context, op Operation, fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	c.hook.OnOperationStart(ctx, op)
	start := time.Now()
	result, err := fn()
	c.hook.OnOperationComplete(ctx, op, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) operation(name, namespace, credentialType, credential string) Operation {
	return Operation{
		ID:             uuid.NewString(),
		Name:           name,
		Namespace:      namespace,
		CredentialType: credentialType,
		CredentialName: credential,
	}
}

func validateRequest(namespace, credentialType, name string, needName bool) error {
	switch {
	case namespace == "":
		return fmt.Errorf("%w: namespace is required", ErrInvalidRequest)
	case credentialType == "":
		return fmt.Errorf("%w: credential type is required", ErrInvalidRequest)
	case needName && name == "":
		return fmt.Errorf("%w: credential name is required", ErrInvalidRequest)
	}
	return nil
}

func marshalCredential(credential any) ([]byte, error) {
	if credential == nil {
		return nil, fmt.Errorf("%w: credential cannot be nil", ErrInvalidPayload)
	}
	if raw, ok := credential.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: credential is not valid JSON", ErrInvalidPayload)
		}
		return raw, nil
	}

	plaintext, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal credential: %w", ErrInvalidPayload, err)
	}
	return plaintext, nil
}

// credentialName extracts a name for logs from the common credential shapes.
func credentialName(credential any) string {
	switch v := credential.(type) {
	case Password:
		return v.Name
	case *Password:
		if v != nil {
			return v.Name
		}
	case Key:
		return v.Name
	case *Key:
		if v != nil {
			return v.Name
		}
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	case map[string]string:
		return v["name"]
	}
	return ""
}
