package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// LoadOrGenerateKeys reads the PEM pair from disk. When neither file exists an
// ephemeral 2048-bit pair is generated, so tokens do not survive a restart.
func LoadOrGenerateKeys(privatePath, publicPath string) (privatePEM, publicPEM []byte, generated bool, err error) {
	privatePEM, privErr := os.ReadFile(privatePath)
	publicPEM, pubErr := os.ReadFile(publicPath)
	switch {
	case privErr == nil && pubErr == nil:
		return privatePEM, publicPEM, false, nil
	case errors.Is(privErr, os.ErrNotExist) && errors.Is(pubErr, os.ErrNotExist):
		privatePEM, publicPEM, err = GenerateKeyPair(2048)
		return privatePEM, publicPEM, true, err
	case privErr != nil:
		return nil, nil, false, fmt.Errorf("read private key: %w", privErr)
	default:
		return nil, nil, false, fmt.Errorf("read public key: %w", pubErr)
	}
}

// GenerateKeyPair returns a PEM-encoded RSA key pair.
func GenerateKeyPair(bits int) (privatePEM, publicPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate rsa key: %w", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %w", err)
	}
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privatePEM, publicPEM, nil
}
