package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidKey is returned when the configured key is not exactly 32 bytes.
	ErrInvalidKey = errors.New("encryption key must be exactly 32 bytes")

	// ErrKeyUnavailable is returned when no encryptor was configured.
	ErrKeyUnavailable = errors.New("encryption key not configured")

	// ErrCorruptCiphertext is returned when a ciphertext cannot be decoded
	// or fails authentication.
	ErrCorruptCiphertext = errors.New("ciphertext corrupt or not produced by this key")
)

// Encryptor encrypts and decrypts credentials with a process-wide
// symmetric key using ChaCha20-Poly1305. Ciphertexts are base64 with the
// random nonce prefixed, so the same plaintext never encrypts to the
// same output twice.
type Encryptor struct {
	aead cipher.AEAD
}

func NewEncryptor(key string) (*Encryptor, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.New([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil || e.aead == nil {
		return "", ErrKeyUnavailable
	}
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if e == nil || e.aead == nil {
		return "", ErrKeyUnavailable
	}
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptCiphertext, err)
	}

	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrCorruptCiphertext
	}

	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptCiphertext, err)
	}
	return string(plaintext), nil
}
