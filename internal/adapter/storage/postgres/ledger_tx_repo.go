package postgres

import (
	"context"
	"fmt"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/canonical"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerTransactionRepo implements ports.LedgerTransactionRepository.
type LedgerTransactionRepo struct {
	pool Pool
}

// NewLedgerTransactionRepo creates a new LedgerTransactionRepo.
func NewLedgerTransactionRepo(pool Pool) *LedgerTransactionRepo {
	return &LedgerTransactionRepo{pool: pool}
}

// Create inserts a transaction within a database transaction. The payload is
// stored in its canonical JSON form.
func (r *LedgerTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	data, err := canonical.Bytes(t.Payload)
	if err != nil {
		return fmt.Errorf("encode transaction data: %w", err)
	}

	query := `INSERT INTO ledger_transactions (id, item_id, block_number, transaction_type, data, timestamp, nonce, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.ItemID, t.BlockNumber, string(t.Kind()), data, t.Timestamp, t.Nonce, t.Hash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrNonceUsed()
		}
		return fmt.Errorf("insert ledger transaction: %w", err)
	}
	return nil
}

// BlockRange returns the lowest and highest block numbers that hold a
// transaction for itemID.
func (r *LedgerTransactionRepo) BlockRange(ctx context.Context, itemID uuid.UUID) (int64, int64, bool, error) {
	query := `SELECT MIN(block_number), MAX(block_number) FROM ledger_transactions WHERE item_id = $1`

	var first, last *int64
	if err := r.pool.QueryRow(ctx, query, itemID).Scan(&first, &last); err != nil {
		return 0, 0, false, fmt.Errorf("item block range: %w", err)
	}
	if first == nil || last == nil {
		return 0, 0, false, nil
	}
	return *first, *last, true, nil
}

// ListRange returns every transaction stored in blocks first..last joined to
// its block, ordered by block number. A transaction whose block row is gone
// comes back with a nil Block; one whose kind or data cannot be decoded comes
// back with DecodeErr set.
func (r *LedgerTransactionRepo) ListRange(ctx context.Context, first, last int64) ([]domain.LedgerEntry, error) {
	query := `SELECT t.id, t.item_id, t.block_number, t.transaction_type, t.data, t.timestamp, t.nonce, t.hash,
		b.block_number, b.previous_hash, b.merkle_root, b.nonce, b.timestamp, b.hash
		FROM ledger_transactions t
		LEFT JOIN blocks b ON b.block_number = t.block_number
		WHERE t.block_number BETWEEN $1 AND $2
		ORDER BY t.block_number, t.timestamp, t.id`

	rows, err := r.pool.Query(ctx, query, first, last)
	if err != nil {
		return nil, fmt.Errorf("list ledger range: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, nil
}

func scanLedgerEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var (
		t    domain.Transaction
		kind string
		data []byte

		blockNumber  *int64
		previousHash *string
		merkleRoot   *string
		blockNonce   *int64
		blockTime    *time.Time
		blockHash    *string
	)

	err := row.Scan(
		&t.ID, &t.ItemID, &t.BlockNumber, &kind, &data, &t.Timestamp, &t.Nonce, &t.Hash,
		&blockNumber, &previousHash, &merkleRoot, &blockNonce, &blockTime, &blockHash,
	)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("scan ledger row: %w", err)
	}

	t.Timestamp = domain.NormalizeTime(t.Timestamp)
	entry := domain.LedgerEntry{Transaction: &t}

	// A row that no longer decodes is tampered data, not a storage fault; the
	// verifier reports it against its block.
	payload, err := domain.DecodePayload(domain.TransactionKind(kind), data)
	if err != nil {
		entry.DecodeErr = fmt.Errorf("decode transaction %s: %w", t.ID, err)
	} else {
		t.Payload = payload
	}

	if blockNumber != nil {
		entry.Block = &domain.BlockRecord{
			Number:       *blockNumber,
			PreviousHash: deref(previousHash),
			MerkleRoot:   deref(merkleRoot),
			Hash:         deref(blockHash),
		}
		if blockNonce != nil {
			entry.Block.Nonce = *blockNonce
		}
		if blockTime != nil {
			entry.Block.Timestamp = domain.NormalizeTime(*blockTime)
		}
	}
	return entry, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
