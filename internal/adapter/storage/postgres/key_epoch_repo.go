package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const (
	epochColumns = `version, wrapped_key, active_from, active_to, created_at`
	latestEpoch  = `SELECT ` + epochColumns + ` FROM key_epochs ORDER BY active_from DESC, created_at DESC LIMIT 1`
)

// KeyEpochRepo implements ports.KeyEpochRepository.
type KeyEpochRepo struct {
	pool Pool
}

// NewKeyEpochRepo creates a new KeyEpochRepo.
func NewKeyEpochRepo(pool Pool) *KeyEpochRepo {
	return &KeyEpochRepo{pool: pool}
}

// GetLatest returns the most recently activated epoch, or nil if none exists.
func (r *KeyEpochRepo) GetLatest(ctx context.Context) (*domain.KeyEpoch, error) {
	return scanEpoch(r.pool.QueryRow(ctx, latestEpoch))
}

// GetByVersion fetches an epoch by its version.
func (r *KeyEpochRepo) GetByVersion(ctx context.Context, version string) (*domain.KeyEpoch, error) {
	query := `SELECT ` + epochColumns + ` FROM key_epochs WHERE version = $1`
	return scanEpoch(r.pool.QueryRow(ctx, query, version))
}

// CreateIfNoneActive inserts epoch unless an epoch is already active at now.
// Creators are serialized by an advisory transaction lock and re-read the
// latest epoch once they hold it, so only the first one inserts.
func (r *KeyEpochRepo) CreateIfNoneActive(ctx context.Context, epoch *domain.KeyEpoch, now time.Time) (*domain.KeyEpoch, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin key epoch tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, keyEpochLockKey); err != nil {
		return nil, false, fmt.Errorf("acquire key epoch lock: %w", err)
	}

	latest, err := scanEpoch(tx.QueryRow(ctx, latestEpoch))
	if err != nil {
		return nil, false, err
	}
	if latest != nil && !latest.IsExpired(now) {
		return latest, false, nil
	}

	query := `INSERT INTO key_epochs (` + epochColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, query,
		epoch.Version, epoch.WrappedKey, epoch.ActiveFrom, epoch.ActiveTo, epoch.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, false, apperror.ErrAllocationConflict(fmt.Errorf("key version %s taken: %w", epoch.Version, err))
		}
		return nil, false, fmt.Errorf("insert key epoch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit key epoch: %w", err)
	}
	return epoch, true, nil
}

func scanEpoch(row pgx.Row) (*domain.KeyEpoch, error) {
	e := &domain.KeyEpoch{}
	err := row.Scan(&e.Version, &e.WrappedKey, &e.ActiveFrom, &e.ActiveTo, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan key epoch: %w", err)
	}
	e.ActiveFrom = domain.NormalizeTime(e.ActiveFrom)
	e.ActiveTo = domain.NormalizeTime(e.ActiveTo)
	return e, nil
}
