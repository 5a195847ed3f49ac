// Package testkeys generates throwaway RSA key pairs in the bare PEM body
// form the credential store hands out in its bindings.
package testkeys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// Bits is small enough to keep tests fast and large enough for OAEP-SHA256.
const Bits = 2048

// KeyPair holds one RSA key pair as bare base64 DER bodies plus the parsed key.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
	Key        *rsa.PrivateKey
}

// Generate creates a fresh key pair. Private keys are PKCS#8, public keys
// PKIX, matching the store's binding format.
func Generate() (KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, Bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate RSA key: %w", err)
	}
	return FromKey(key)
}

func FromKey(key *rsa.PrivateKey) (KeyPair, error) {
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal public key: %w", err)
	}
	return KeyPair{
		PrivateKey: base64.StdEncoding.EncodeToString(privDER),
		PublicKey:  base64.StdEncoding.EncodeToString(pubDER),
		Key:        key,
	}, nil
}
