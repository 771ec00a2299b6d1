package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm names an AEAD cipher.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"

	// AlgorithmChaCha20 is ChaCha20-Poly1305, faster on CPUs without AES
	// instructions.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// id is the algorithm byte written into every stream header.
func (a Algorithm) id() (byte, error) {
	switch a {
	case AlgorithmAESGCM:
		return 1, nil
	case AlgorithmChaCha20:
		return 2, nil
	default:
		return 0, fmt.Errorf("encryption: unsupported algorithm %q", a)
	}
}

// Validate reports whether a is supported. The empty value selects the
// default.
func (a Algorithm) Validate() error {
	if a == "" {
		return nil
	}
	_, err := a.id()
	return err
}

// Sealer encrypts and decrypts streams with one key.
type Sealer struct {
	aead  cipher.AEAD
	alg   Algorithm
	algID byte
}

// New derives a 256-bit key from passphrase with SHA-256 and builds a
// Sealer. An empty alg selects AES-256-GCM.
func New(passphrase string, alg Algorithm) (*Sealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption: empty key")
	}
	if alg == "" {
		alg = AlgorithmAESGCM
	}
	algID, err := alg.id()
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte(passphrase))

	var aead cipher.AEAD
	switch alg {
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	default:
		var block cipher.Block
		block, err = aes.NewCipher(key[:])
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encryption: init %s: %w", alg, err)
	}
	return &Sealer{aead: aead, alg: alg, algID: algID}, nil
}

// Algorithm returns the cipher in use.
func (s *Sealer) Algorithm() Algorithm { return s.alg }
