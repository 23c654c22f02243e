package postgres

import (
	"context"
	"errors"
	"fmt"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// BlockRepo implements ports.BlockRepository.
type BlockRepo struct {
	pool Pool
}

// NewBlockRepo creates a new BlockRepo.
func NewBlockRepo(pool Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// LockLedger takes the transaction-scoped advisory lock that serializes
// block allocation. It is released on commit or rollback.
func (r *BlockRepo) LockLedger(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	return nil
}

// GetLatest returns the block with the highest number, or nil when the
// ledger is empty.
func (r *BlockRepo) GetLatest(ctx context.Context, tx pgx.Tx) (*domain.BlockRecord, error) {
	query := `SELECT block_number, previous_hash, merkle_root, nonce, timestamp, hash
		FROM blocks ORDER BY block_number DESC LIMIT 1`

	b := &domain.BlockRecord{}
	err := tx.QueryRow(ctx, query).Scan(
		&b.Number, &b.PreviousHash, &b.MerkleRoot, &b.Nonce, &b.Timestamp, &b.Hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest block: %w", err)
	}
	b.Timestamp = domain.NormalizeTime(b.Timestamp)
	return b, nil
}

// Create inserts a block. A duplicate block number or hash means another
// writer took the slot and is reported as an allocation conflict.
func (r *BlockRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.BlockRecord) error {
	query := `INSERT INTO blocks (block_number, previous_hash, merkle_root, nonce, timestamp, hash)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, b.Number, b.PreviousHash, b.MerkleRoot, b.Nonce, b.Timestamp, b.Hash)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAllocationConflict(fmt.Errorf("block %d: %w", b.Number, err))
		}
		return fmt.Errorf("insert block: %w", err)
	}
	return nil
}
