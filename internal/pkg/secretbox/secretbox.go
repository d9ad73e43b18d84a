// Package secretbox seals short secrets (OAuth refresh tokens) before they are
// written to the database.
package secretbox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "drive-copilot/refresh-token/v1"

var (
	ErrEmptyKey   = errors.New("encryption key is empty")
	ErrCiphertext = errors.New("malformed ciphertext")
)

// Box encrypts with XChaCha20-Poly1305 under a key derived from the
// configured passphrase.
type Box struct {
	key []byte
}

func New(passphrase string) (*Box, error) {
	if passphrase == "" {
		return nil, ErrEmptyKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Box{key: key}, nil
}

// Seal returns base64(nonce || ciphertext). additionalData binds the value to
// its owner, so a row copied to another user fails to open.
func (b *Box) Seal(plaintext, additionalData string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(additionalData))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(encoded, additionalData string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", ErrCiphertext
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(additionalData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return string(plaintext), nil
}
