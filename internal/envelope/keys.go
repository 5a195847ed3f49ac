package envelope

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/hengadev/credstore/internal/storeerr"
)

const (
	privateKeyBlock = "PRIVATE KEY"
	publicKeyBlock  = "PUBLIC KEY"

	// pemLineLength is the body width used when armoring a bare key.
	pemLineLength = 64
)

var errNotRSA = errors.New("key is not an RSA key")

// Armor wraps a bare base64 key body in PEM delimiters of the given block
// type. Input that already carries a BEGIN line is returned unchanged.
func Armor(body, blockType string) string {
	if strings.Contains(body, "-----BEGIN") {
		return body
	}
	compact := strings.Join(strings.Fields(body), "")

	var b strings.Builder
	b.WriteString("-----BEGIN " + blockType + "-----\n")
	for len(compact) > pemLineLength {
		b.WriteString(compact[:pemLineLength])
		b.WriteByte('\n')
		compact = compact[pemLineLength:]
	}
	if compact != "" {
		b.WriteString(compact)
		b.WriteByte('\n')
	}
	b.WriteString("-----END " + blockType + "-----\n")
	return b.String()
}

// ParsePrivateKey decodes the caller's private key. PKCS#8 is tried first,
// then PKCS#1.
func ParsePrivateKey(key string) (*rsa.PrivateKey, error) {
	der, err := decodePEM(Armor(key, privateKeyBlock))
	if err != nil {
		return nil, storeerr.NewDecryptionError(storeerr.ParseKey, err)
	}

	if parsed, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, storeerr.NewDecryptionError(storeerr.ParseKey, errNotRSA)
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, storeerr.NewDecryptionError(storeerr.ParseKey, fmt.Errorf("unsupported private key encoding: %w", err))
	}
	return rsaKey, nil
}

// ParsePublicKey decodes the store's public key. PKIX is tried first, then
// PKCS#1.
func ParsePublicKey(key string) (*rsa.PublicKey, error) {
	der, err := decodePEM(Armor(key, publicKeyBlock))
	if err != nil {
		return nil, storeerr.NewEncryptionError(storeerr.ParseKey, err)
	}

	if parsed, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaKey, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, storeerr.NewEncryptionError(storeerr.ParseKey, errNotRSA)
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, storeerr.NewEncryptionError(storeerr.ParseKey, fmt.Errorf("unsupported public key encoding: %w", err))
	}
	return rsaKey, nil
}

func decodePEM(armored string) ([]byte, error) {
	block, _ := pem.Decode([]byte(armored))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return block.Bytes, nil
}
