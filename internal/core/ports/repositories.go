package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"provenance-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductLineRepository defines persistence operations for product lines.
type ProductLineRepository interface {
	Create(ctx context.Context, line *domain.ProductLine) error
	GetByCode(ctx context.Context, code string) (*domain.ProductLine, error)
	// NextMintNumber increments and returns the line's counter inside tx.
	NextMintNumber(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int64, error)
}

// ItemRepository defines persistence operations for items.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type ItemRepository interface {
	Create(ctx context.Context, tx pgx.Tx, item *domain.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Item, error)
	UpdateOwner(ctx context.Context, tx pgx.Tx, id uuid.UUID, owner domain.Party, updatedAt time.Time) error
}

// BlockRepository persists the global block sequence.
type BlockRepository interface {
	// LockLedger serializes block allocation until tx ends.
	LockLedger(ctx context.Context, tx pgx.Tx) error
	// GetLatest returns the highest-numbered block, or nil for an empty ledger.
	GetLatest(ctx context.Context, tx pgx.Tx) (*domain.BlockRecord, error)
	Create(ctx context.Context, tx pgx.Tx, block *domain.BlockRecord) error
}

// LedgerTransactionRepository persists transactions and reads them back joined
// to their blocks.
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// BlockRange returns the first and last block numbers holding itemID's
	// transactions. found is false when the item has none.
	BlockRange(ctx context.Context, itemID uuid.UUID) (first, last int64, found bool, err error)
	// ListRange returns every transaction in blocks first..last, in block order.
	ListRange(ctx context.Context, first, last int64) ([]domain.LedgerEntry, error)
}

// KeyEpochRepository persists tag-encryption key epochs.
type KeyEpochRepository interface {
	GetLatest(ctx context.Context) (*domain.KeyEpoch, error)
	GetByVersion(ctx context.Context, version string) (*domain.KeyEpoch, error)
	// CreateIfNoneActive inserts epoch unless another epoch is active at now.
	// Concurrent callers are serialized; a loser gets the winner's epoch and
	// created=false.
	CreateIfNoneActive(ctx context.Context, epoch *domain.KeyEpoch, now time.Time) (winner *domain.KeyEpoch, created bool, err error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
