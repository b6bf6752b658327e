package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving sealing keys from a passphrase.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // AES-256
	saltLength  = 16
)

// sealVersion prefixes every sealed blob so the layout can change later.
const sealVersion byte = 1

var (
	// ErrEmptyPassphrase is returned by NewSealer when no passphrase is given.
	ErrEmptyPassphrase = errors.New("cryptox: empty passphrase")

	// ErrSealedInvalid is returned by Open for data that was not produced by
	// Seal with the same passphrase, or was tampered with.
	ErrSealedInvalid = errors.New("cryptox: sealed data is invalid")
)

// Sealer encrypts small secrets at rest with AES-256-GCM. The key is derived
// from a passphrase with Argon2id and a random per-blob salt.
//
// Output format: [1-byte version][16-byte salt][12-byte nonce][ciphertext+tag]
type Sealer struct {
	passphrase []byte

	mu   sync.Mutex
	keys map[string][]byte // derived key by salt
}

// NewSealer returns a Sealer for passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &Sealer{
		passphrase: []byte(passphrase),
		keys:       make(map[string][]byte),
	}, nil
}

// Seal encrypts plaintext. Sealing the same plaintext twice yields different
// output.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealVersion)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, []byte{sealVersion}), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < 1+saltLength || sealed[0] != sealVersion {
		return nil, ErrSealedInvalid
	}
	salt := sealed[1 : 1+saltLength]

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	rest := sealed[1+saltLength:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrSealedInvalid
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte{sealVersion})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealedInvalid, err)
	}
	return plaintext, nil
}

// aead returns the AES-GCM cipher for salt. Derived keys are cached because
// Argon2id is deliberately slow and a token is opened on every call.
func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	s.mu.Lock()
	key, ok := s.keys[string(salt)]
	if !ok {
		key = argon2.IDKey(s.passphrase, salt, iterations, memory, parallelism, keyLength)
		s.keys[string(salt)] = key
	}
	s.mu.Unlock()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
