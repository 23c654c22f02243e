package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"provenance-ledger/pkg/apperror"
)

const (
	keySize    = 32 // AES-256
	gcmIVSize  = 12
	gcmTagSize = 16
)

var (
	errKeySize        = fmt.Errorf("key must be %d bytes", keySize)
	errSealedTooShort = errors.New("sealed payload too short")
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w, got %d", errKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCMWithNonceSize(block, gcmIVSize)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aesGCM, nil
}

// seal encrypts plaintext under key with a fresh random IV and returns the
// three parts separately so callers can lay them out as their format needs.
func seal(key, plaintext []byte) (iv, ciphertext, tag []byte, err error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, gcmIVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, fmt.Errorf("generating iv: %w", err)
	}

	out := aesGCM.Seal(nil, iv, plaintext, nil)
	split := len(out) - gcmTagSize
	return iv, out[:split], out[split:], nil
}

// open reverses seal. Any authentication failure returns an error and no plaintext.
func open(key, iv, ciphertext, tag []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcmIVSize || len(tag) != gcmTagSize {
		return nil, errSealedTooShort
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}

// MasterKeyWrapper envelope-encrypts epoch keys under the long-lived master key
// using AES-256-GCM.
type MasterKeyWrapper struct {
	key []byte
}

// NewMasterKeyWrapper validates the master key. hexKey must be a 64-character
// hex string (32 bytes decoded); anything else is a fatal configuration error.
func NewMasterKeyWrapper(hexKey string) (*MasterKeyWrapper, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, apperror.ErrInvalidMasterKey(fmt.Errorf("decoding master key: %w", err))
	}
	if len(key) != keySize {
		return nil, apperror.ErrInvalidMasterKey(fmt.Errorf("master key must be %d bytes, got %d", keySize, len(key)))
	}
	return &MasterKeyWrapper{key: key}, nil
}

// Wrap returns base64(iv || ciphertext || tag) of raw.
func (w *MasterKeyWrapper) Wrap(raw []byte) (string, error) {
	iv, ct, tag, err := seal(w.key, raw)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, len(iv)+len(ct)+len(tag))
	buf = append(buf, iv...)
	buf = append(buf, ct...)
	buf = append(buf, tag...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Unwrap decodes and decrypts a wrapped key. The result must be a 32-byte key.
func (w *MasterKeyWrapper) Unwrap(wrapped string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("decoding wrapped key: %w", err)
	}
	if len(buf) != gcmIVSize+keySize+gcmTagSize {
		return nil, fmt.Errorf("wrapped key is %d bytes: %w", len(buf), errSealedTooShort)
	}

	iv := buf[:gcmIVSize]
	ct := buf[gcmIVSize : gcmIVSize+keySize]
	tag := buf[gcmIVSize+keySize:]

	raw, err := open(w.key, iv, ct, tag)
	if err != nil {
		return nil, fmt.Errorf("unwrapping key: %w", err)
	}
	return raw, nil
}
