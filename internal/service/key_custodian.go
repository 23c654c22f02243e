package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	keyVersionBytes = 3
	// versionAttempts bounds how often a colliding version is redrawn.
	versionAttempts = 3
)

// KeyCustodian implements ports.KeyProvider. It owns the lifecycle of the
// rotating tag-encryption keys: generation, wrapping under the master key,
// and the activation window of each epoch.
type KeyCustodian struct {
	repo           ports.KeyEpochRepository
	wrapper        *MasterKeyWrapper
	rotationMonths int
	now            func() time.Time
	audit          ports.AuditService
	log            zerolog.Logger
}

// NewKeyCustodian creates a KeyCustodian. now is the clock used for epoch
// windows; audit may be nil.
func NewKeyCustodian(
	repo ports.KeyEpochRepository,
	wrapper *MasterKeyWrapper,
	rotationMonths int,
	now func() time.Time,
	audit ports.AuditService,
	log zerolog.Logger,
) *KeyCustodian {
	if rotationMonths <= 0 {
		rotationMonths = 1
	}
	return &KeyCustodian{
		repo:           repo,
		wrapper:        wrapper,
		rotationMonths: rotationMonths,
		now:            now,
		audit:          audit,
		log:            log.With().Str("component", "key_custodian").Logger(),
	}
}

// CurrentKey returns the active epoch key. When the latest epoch has expired,
// or none exists, a new one is generated and persisted; concurrent callers
// all end up with the same winning epoch.
func (k *KeyCustodian) CurrentKey(ctx context.Context) (*domain.ActiveKey, error) {
	now := domain.NormalizeTime(k.now())

	latest, err := k.repo.GetLatest(ctx)
	if err != nil {
		return nil, dbError("get latest key epoch", err)
	}
	if latest != nil && !latest.IsExpired(now) {
		return k.unwrap(latest)
	}

	return k.rotate(ctx, now)
}

func (k *KeyCustodian) rotate(ctx context.Context, now time.Time) (*domain.ActiveKey, error) {
	raw := make([]byte, keySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("generating epoch key: %w", err))
	}

	wrapped, err := k.wrapper.Wrap(raw)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("wrapping epoch key: %w", err))
	}

	epoch, winner, created, err := k.insertEpoch(ctx, wrapped, now)
	if err != nil {
		return nil, err
	}
	if !created {
		k.log.Debug().Str("version", winner.Version).Msg("lost key rotation race, using winner epoch")
		return k.unwrap(winner)
	}

	k.log.Info().
		Str("version", epoch.Version).
		Time("active_to", epoch.ActiveTo).
		Msg("key epoch rotated")

	if k.audit != nil {
		k.audit.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			Actor:        "system",
			Action:       domain.AuditActionRotateKey,
			ResourceType: "key_epoch",
			ResourceID:   epoch.Version,
			CreatedAt:    now,
		})
	}

	return &domain.ActiveKey{Version: epoch.Version, Key: raw}, nil
}

// insertEpoch stores a new epoch under a fresh random version. A version that
// collides with an existing row is redrawn up to versionAttempts times; after
// that the allocation conflict is returned for the caller to retry.
func (k *KeyCustodian) insertEpoch(ctx context.Context, wrapped string, now time.Time) (*domain.KeyEpoch, *domain.KeyEpoch, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= versionAttempts; attempt++ {
		version, err := newKeyVersion()
		if err != nil {
			return nil, nil, false, apperror.ErrEncryptionFailure(err)
		}

		epoch := &domain.KeyEpoch{
			Version:    version,
			WrappedKey: wrapped,
			ActiveFrom: now,
			ActiveTo:   now.AddDate(0, k.rotationMonths, 0),
			CreatedAt:  now,
		}

		winner, created, err := k.repo.CreateIfNoneActive(ctx, epoch, now)
		if err == nil {
			return epoch, winner, created, nil
		}
		if !isAllocationConflict(err) {
			return nil, nil, false, dbError("create key epoch", err)
		}

		k.log.Warn().Str("version", version).Int("attempt", attempt).Msg("key version collision, drawing a new one")
		lastErr = err
	}
	return nil, nil, false, lastErr
}

// KeyForVersion returns the raw key of an epoch that has not yet expired.
func (k *KeyCustodian) KeyForVersion(ctx context.Context, version string) ([]byte, error) {
	epoch, err := k.repo.GetByVersion(ctx, version)
	if err != nil {
		return nil, dbError("get key epoch", err)
	}
	if epoch == nil {
		return nil, apperror.ErrKeyNotFound()
	}
	if epoch.IsExpired(domain.NormalizeTime(k.now())) {
		k.log.Info().Str("version", version).Time("active_to", epoch.ActiveTo).Msg("key epoch expired")
		return nil, apperror.ErrKeyExpired()
	}

	active, err := k.unwrap(epoch)
	if err != nil {
		return nil, err
	}
	return active.Key, nil
}

func (k *KeyCustodian) unwrap(epoch *domain.KeyEpoch) (*domain.ActiveKey, error) {
	raw, err := k.wrapper.Unwrap(epoch.WrappedKey)
	if err != nil {
		k.log.Error().Err(err).Str("version", epoch.Version).Msg("key epoch unwrap failed")
		return nil, apperror.ErrKeyUnwrap(err)
	}
	if len(raw) != keySize {
		return nil, apperror.ErrKeyUnwrap(fmt.Errorf("%w, got %d", errKeySize, len(raw)))
	}
	return &domain.ActiveKey{Version: epoch.Version, Key: raw}, nil
}

func newKeyVersion() (string, error) {
	b := make([]byte, keyVersionBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating key version: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func isKeyVersion(v string) bool {
	if len(v) != keyVersionBytes*2 {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
