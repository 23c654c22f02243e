package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, product_line_id, mint_number, serial_number, nfc_serial_number,
		owner_name, owner_email, key_version, created_at, updated_at`

// ItemRepo implements ports.ItemRepository.
type ItemRepo struct {
	pool Pool
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(pool Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// Create inserts an item within a database transaction.
func (r *ItemRepo) Create(ctx context.Context, tx pgx.Tx, item *domain.Item) error {
	query := `INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		item.ID, item.ProductLineID, item.MintNumber, item.SerialNumber, item.NFCSerialNumber,
		item.Owner.Name, item.Owner.Email, item.KeyVersion, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateItem()
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID fetches an item by UUID.
func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches an item with a row lock (SELECT ... FOR UPDATE).
// Must be called within a transaction.
func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return scanItem(tx.QueryRow(ctx, query, id))
}

// UpdateOwner records the new owner within a database transaction.
func (r *ItemRepo) UpdateOwner(ctx context.Context, tx pgx.Tx, id uuid.UUID, owner domain.Party, updatedAt time.Time) error {
	query := `UPDATE items SET owner_name = $1, owner_email = $2, updated_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, owner.Name, owner.Email, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update item owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item not found: %s", id)
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID, &item.ProductLineID, &item.MintNumber, &item.SerialNumber, &item.NFCSerialNumber,
		&item.Owner.Name, &item.Owner.Email, &item.KeyVersion, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return item, nil
}
