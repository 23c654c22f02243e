package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/canonical"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var tokenEncoding = base64.RawURLEncoding.Strict()

// TagCodec implements ports.TagService. Tokens are
// base64url(ciphertext || iv || tag) under an AES-256-GCM epoch key.
type TagCodec struct {
	keys    ports.KeyProvider
	baseURL string
	log     zerolog.Logger
}

// NewTagService creates a tag codec that resolves keys through keys and
// builds links under baseURL.
func NewTagService(keys ports.KeyProvider, baseURL string, log zerolog.Logger) *TagCodec {
	return &TagCodec{
		keys:    keys,
		baseURL: baseURL,
		log:     log.With().Str("component", "tag_codec").Logger(),
	}
}

// Mint seals the identity fields under key.
func (s *TagCodec) Mint(itemID uuid.UUID, serialNumber, nfcSerialNumber string, key []byte) (string, error) {
	plaintext, err := canonical.Bytes(domain.TagIdentity{
		ItemID:          itemID,
		SerialNumber:    serialNumber,
		NFCSerialNumber: nfcSerialNumber,
	})
	if err != nil {
		return "", apperror.ErrEncryptionFailure(fmt.Errorf("encoding tag identity: %w", err))
	}

	iv, ct, tag, err := seal(key, plaintext)
	if err != nil {
		return "", apperror.ErrEncryptionFailure(err)
	}

	buf := make([]byte, 0, len(ct)+len(iv)+len(tag))
	buf = append(buf, ct...)
	buf = append(buf, iv...)
	buf = append(buf, tag...)
	return tokenEncoding.EncodeToString(buf), nil
}

// Open authenticates and decodes a token. Every failure yields the same
// generic error; the cause is only logged.
func (s *TagCodec) Open(token string, key []byte) (*domain.TagIdentity, error) {
	identity, err := openToken(token, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("tag rejected")
		return nil, apperror.ErrInvalidTag()
	}
	return identity, nil
}

func openToken(token string, key []byte) (*domain.TagIdentity, error) {
	buf, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if len(buf) <= gcmIVSize+gcmTagSize {
		return nil, fmt.Errorf("token is %d bytes: %w", len(buf), errSealedTooShort)
	}

	tagStart := len(buf) - gcmTagSize
	ivStart := tagStart - gcmIVSize
	plaintext, err := open(key, buf[ivStart:tagStart], buf[:ivStart], buf[tagStart:])
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.DisallowUnknownFields()

	var identity domain.TagIdentity
	if err := dec.Decode(&identity); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	if identity.ItemID == uuid.Nil || identity.SerialNumber == "" || identity.NFCSerialNumber == "" {
		return nil, errors.New("identity has empty fields")
	}
	return &identity, nil
}

// MintTag seals the identity and returns the link to print on the tag.
func (s *TagCodec) MintTag(itemID uuid.UUID, serialNumber, nfcSerialNumber string, key []byte, version string) (string, error) {
	token, err := s.Mint(itemID, serialNumber, nfcSerialNumber, key)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("parsing tag base url: %w", err))
	}
	q := u.Query()
	q.Set("key", token)
	q.Set("version", version)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// OpenTag resolves the epoch key for version through the key custodian and
// opens the token with it. An expired epoch is reported as such so the
// caller can ask for a newer tag; every other tag problem is generic.
func (s *TagCodec) OpenTag(ctx context.Context, token, version string) (*domain.TagIdentity, error) {
	if !isKeyVersion(version) {
		s.log.Warn().Str("version", version).Msg("tag rejected: malformed key version")
		return nil, apperror.ErrInvalidTag()
	}

	key, err := s.keys.KeyForVersion(ctx, version)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case apperror.ErrKeyExpired().Code:
				return nil, err
			case apperror.ErrKeyNotFound().Code:
				s.log.Warn().Str("version", version).Msg("tag rejected: unknown key version")
				return nil, apperror.ErrInvalidTag()
			}
		}
		return nil, err
	}

	return s.Open(token, key)
}
