package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	sealKeySize    = 32
	sealIterations = 100000
)

// sealSalt is fixed so the same VAULT_KEY always yields the same key.
var sealSalt = []byte("safestudy/vault/v1")

var (
	ErrEmptySealKey = errors.New("vault key must not be empty")
	ErrSealedData   = errors.New("sealed data is malformed or was tampered with")
)

// Sealer encrypts vault secrets at rest with AES-256-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256 key from passphrase with PBKDF2-SHA256.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptySealKey
	}

	key := pbkdf2.Key([]byte(passphrase), sealSalt, sealIterations, sealKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal returns nonce||ciphertext. additional binds the ciphertext to its
// owner, so a row copied to another user fails to open.
func (s *Sealer) Seal(plaintext, additional []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, additional []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrSealedData
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], additional)
	if err != nil {
		return nil, ErrSealedData
	}
	return plaintext, nil
}
