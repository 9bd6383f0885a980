// Package keyfetcher loads the RSA key pair used to sign and verify access tokens.
package keyfetcher

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

type PublicKeyFetcher interface {
	FetchPublicKey() (*rsa.PublicKey, error)
}

type PrivateKeyFetcher interface {
	FetchPrivateKey() (*rsa.PrivateKey, error)
}

// From returns PEM encoded key material.
type From func() ([]byte, error)

// FetchPublicKey parses the loaded key as an RSA public key.
func (f From) FetchPublicKey() (*rsa.PublicKey, error) {
	keyBytes, err := f()
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPublicKeyFromPEM(keyBytes)
}

// FetchPrivateKey parses the loaded key as an RSA private key.
func (f From) FetchPrivateKey() (*rsa.PrivateKey, error) {
	keyBytes, err := f()
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
}

// FromBase64Env reads a Base64 encoded PEM key from the environment variable key.
func FromBase64Env(key string) From {
	return func() ([]byte, error) {
		keyBase64 := os.Getenv(key)
		if keyBase64 == "" {
			return nil, fmt.Errorf("key %s is not found", key)
		}

		return base64.StdEncoding.DecodeString(keyBase64)
	}
}

// FromFile reads a PEM key from path on every fetch, so rotated files are picked up.
func FromFile(path string) From {
	return func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}

		return data, nil
	}
}
