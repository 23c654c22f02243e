package postgres

import (
	"context"
	"errors"
	"fmt"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductLineRepo implements ports.ProductLineRepository.
type ProductLineRepo struct {
	pool Pool
}

// NewProductLineRepo creates a new ProductLineRepo.
func NewProductLineRepo(pool Pool) *ProductLineRepo {
	return &ProductLineRepo{pool: pool}
}

// Create inserts a product line.
func (r *ProductLineRepo) Create(ctx context.Context, line *domain.ProductLine) error {
	query := `INSERT INTO product_lines (id, code, name, mint_counter, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, line.ID, line.Code, line.Name, line.MintCounter, line.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Validation("product line code already exists")
		}
		return fmt.Errorf("insert product line: %w", err)
	}
	return nil
}

// GetByCode fetches a product line by its code.
func (r *ProductLineRepo) GetByCode(ctx context.Context, code string) (*domain.ProductLine, error) {
	query := `SELECT id, code, name, mint_counter, created_at FROM product_lines WHERE code = $1`

	line := &domain.ProductLine{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&line.ID, &line.Code, &line.Name, &line.MintCounter, &line.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product line by code: %w", err)
	}
	return line, nil
}

// NextMintNumber bumps the line's counter and returns the new value. The row
// lock taken by the UPDATE serializes concurrent mints until tx ends.
func (r *ProductLineRepo) NextMintNumber(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int64, error) {
	query := `UPDATE product_lines SET mint_counter = mint_counter + 1 WHERE id = $1 RETURNING mint_counter`

	var mint int64
	if err := tx.QueryRow(ctx, query, id).Scan(&mint); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("product line not found: %s", id)
		}
		return 0, fmt.Errorf("next mint number: %w", err)
	}
	return mint, nil
}
