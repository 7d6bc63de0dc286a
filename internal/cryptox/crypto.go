// Package cryptox seals small secrets (session tokens) for storage at rest.
package cryptox

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/socialfeed/internal/common"
	"github.com/dmitrijs2005/socialfeed/internal/filex"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidKey = errors.New("invalid sealing key")

// Sealer encrypts and decrypts values with XChaCha20-Poly1305. The additional
// data binds each ciphertext to the storage key it was written under, so a
// value copied to another row fails to open.
type Sealer struct {
	key []byte
}

// NewSealer returns a Sealer for a KeySize-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal encrypts plaintext and returns the ciphertext with its random nonce.
func (s *Sealer) Seal(plaintext, additionalData []byte) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nil, nonce, plaintext, additionalData), nonce, nil
}

// Open decrypts a ciphertext produced by Seal with the same additional data.
func (s *Sealer) Open(ciphertext, nonce, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("open: bad nonce length %d", len(nonce))
	}
	return aead.Open(nil, nonce, ciphertext, additionalData)
}

// LoadOrCreateKey reads the sealing key stored at path, generating and
// writing a fresh one (mode 0600) when the file does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKey, path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	key = common.GenerateRandByteArray(KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}
