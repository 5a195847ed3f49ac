package envelope

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/hengadev/credstore/internal/storeerr"
)

const (
	// KeyAlgorithm wraps the one-time content key.
	KeyAlgorithm = jose.RSA_OAEP_256
	// ContentEncryption seals the payload.
	ContentEncryption = jose.A256GCM

	// HeaderIssuedAt carries the Unix time the envelope was sealed.
	HeaderIssuedAt jose.HeaderKey = "iat"

	// compactSegments is the number of dot separated parts of a compact JWE.
	compactSegments = 5
)

var (
	errMalformed    = errors.New("malformed compact envelope")
	errNonCanonical = errors.New("non-canonical base64url")
)

// Encrypter seals payloads for the holder of one RSA public key.
// It holds no mutable state and is safe for concurrent use.
type Encrypter struct {
	key *rsa.PublicKey
	now func() time.Time
}

type EncrypterOption func(*Encrypter)

// WithClock overrides the source of the iat header.
func WithClock(now func() time.Time) EncrypterOption {
	return func(e *Encrypter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEncrypter parses publicKey (bare PEM body or armored PEM).
func NewEncrypter(publicKey string, opts ...EncrypterOption) (*Encrypter, error) {
	key, err := ParsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return NewEncrypterFromKey(key, opts...), nil
}

func NewEncrypterFromKey(key *rsa.PublicKey, opts ...EncrypterOption) *Encrypter {
	e := &Encrypter{key: key, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encrypt seals plaintext into a compact JWE. go-jose draws a fresh content
// key and IV from crypto/rand on every call.
func (e *Encrypter) Encrypt(plaintext []byte) (string, error) {
	opts := (&jose.EncrypterOptions{}).WithHeader(HeaderIssuedAt, e.now().Unix())

	encrypter, err := jose.NewEncrypter(ContentEncryption, jose.Recipient{Algorithm: KeyAlgorithm, Key: e.key}, opts)
	if err != nil {
		return "", storeerr.NewEncryptionError(storeerr.WrapKey, err)
	}

	object, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return "", storeerr.NewEncryptionError(storeerr.Seal, err)
	}

	compact, err := object.CompactSerialize()
	if err != nil {
		return "", storeerr.NewEncryptionError(storeerr.Serialize, err)
	}
	return compact, nil
}

// Decrypter opens envelopes addressed to one RSA private key.
type Decrypter struct {
	key *rsa.PrivateKey
}

func NewDecrypter(privateKey string) (*Decrypter, error) {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return NewDecrypterFromKey(key), nil
}

func NewDecrypterFromKey(key *rsa.PrivateKey) *Decrypter {
	return &Decrypter{key: key}
}

// Decrypt opens a compact JWE. Only RSA-OAEP-256 with A256GCM is accepted.
// A wrong key and a failed tag check both surface as the Open stage.
func (d *Decrypter) Decrypt(envelope string) ([]byte, error) {
	object, err := parse(envelope)
	if err != nil {
		return nil, err
	}

	plaintext, err := object.Decrypt(d.key)
	if err != nil {
		return nil, storeerr.NewDecryptionError(storeerr.Open, err)
	}
	return plaintext, nil
}

// Encrypt is a one-shot helper around NewEncrypter.
func Encrypt(publicKey string, plaintext []byte) (string, error) {
	e, err := NewEncrypter(publicKey)
	if err != nil {
		return "", err
	}
	return e.Encrypt(plaintext)
}

// Decrypt is a one-shot helper around NewDecrypter.
func Decrypt(privateKey, envelope string) ([]byte, error) {
	d, err := NewDecrypter(privateKey)
	if err != nil {
		return nil, err
	}
	return d.Decrypt(envelope)
}

// IssuedAt reads the iat header of an envelope without decrypting it.
func IssuedAt(envelope string) (time.Time, error) {
	object, err := parse(envelope)
	if err != nil {
		return time.Time{}, err
	}

	raw, ok := object.Header.ExtraHeaders[HeaderIssuedAt]
	if !ok {
		return time.Time{}, storeerr.NewDecryptionError(storeerr.ParseEnvelope, errors.New("missing iat header"))
	}

	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0), nil
	case int64:
		return time.Unix(v, 0), nil
	default:
		return time.Time{}, storeerr.NewDecryptionError(storeerr.ParseEnvelope, fmt.Errorf("iat header has type %T", raw))
	}
}

func parse(envelope string) (*jose.JSONWebEncryption, error) {
	envelope = strings.TrimSpace(envelope)
	segments := strings.Split(envelope, ".")
	if len(segments) != compactSegments {
		return nil, storeerr.NewDecryptionError(storeerr.ParseEnvelope, errMalformed)
	}
	for i, segment := range segments {
		if err := canonicalSegment(segment); err != nil {
			return nil, storeerr.NewDecryptionError(storeerr.ParseEnvelope, fmt.Errorf("segment %d: %w", i, err))
		}
	}

	object, err := jose.ParseEncryptedCompact(envelope,
		[]jose.KeyAlgorithm{KeyAlgorithm},
		[]jose.ContentEncryption{ContentEncryption},
	)
	if err != nil {
		return nil, storeerr.NewDecryptionError(storeerr.ParseEnvelope, err)
	}
	return object, nil
}

// canonicalSegment rejects base64url text that decodes to the same bytes as
// some other text: non-zero trailing bits, padding or embedded line breaks.
// Otherwise a changed character could slip past the authentication tag.
func canonicalSegment(segment string) error {
	raw, err := base64.RawURLEncoding.Strict().DecodeString(segment)
	if err != nil {
		return err
	}
	if base64.RawURLEncoding.EncodeToString(raw) != segment {
		return errNonCanonical
	}
	return nil
}
