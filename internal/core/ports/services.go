package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/ledger"

	"github.com/google/uuid"
)

// KeyProvider hands out tag-encryption keys.
type KeyProvider interface {
	// CurrentKey returns the active epoch key, rotating when none is active.
	CurrentKey(ctx context.Context) (*domain.ActiveKey, error)
	KeyForVersion(ctx context.Context, version string) ([]byte, error)
}

// TagService seals and opens item identities carried by physical tags.
type TagService interface {
	Mint(itemID uuid.UUID, serialNumber, nfcSerialNumber string, key []byte) (string, error)
	Open(token string, key []byte) (*domain.TagIdentity, error)
	MintTag(itemID uuid.UUID, serialNumber, nfcSerialNumber string, key []byte, version string) (string, error)
	OpenTag(ctx context.Context, token, version string) (*domain.TagIdentity, error)
}

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(operatorID string) (string, time.Time, error)
	Validate(tokenString string) (*OperatorClaims, error)
}

// OperatorClaims holds the parsed JWT claims.
type OperatorClaims struct {
	OperatorID string
}

// NonceStore remembers client request nonces for replay protection.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// ItemService drives item creation, transfer and verification on top of the ledger.
type ItemService interface {
	CreateProductLine(ctx context.Context, code, name string) (*domain.ProductLine, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)
	TransferItem(ctx context.Context, req TransferItemRequest) (*ItemResult, error)
	VerifyItem(ctx context.Context, itemID uuid.UUID) (ledger.Result, error)
	ItemHistory(ctx context.Context, itemID uuid.UUID) (*ItemHistory, error)
	ScanTag(ctx context.Context, req ScanTagRequest) (*ItemHistory, error)
}

// CreateItemRequest holds validated input for minting a new item.
// RequestNonce is chosen by the client; a repeat from the same actor within
// the replay window is rejected. Empty means unguarded.
type CreateItemRequest struct {
	ProductLineCode string
	NFCSerialNumber string
	Owner           domain.Party
	RequestNonce    string
	Actor           string
	ClientIP        string
}

// TransferItemRequest holds validated input for an ownership transfer.
type TransferItemRequest struct {
	ItemID       uuid.UUID
	NewOwner     domain.Party
	RequestNonce string
	Actor        string
	ClientIP     string
}

// ScanTagRequest holds the token and key version read from a tag link.
type ScanTagRequest struct {
	Token    string
	Version  string
	ClientIP string
}

// ItemResult is returned by state-changing item operations.
type ItemResult struct {
	Item        *domain.Item
	Transaction *domain.Transaction
	Block       *domain.BlockRecord
	TagURL      string // only set on creation
}

// ItemHistory is an item with its verified ownership chain.
type ItemHistory struct {
	Item    *domain.Item
	Entries []domain.LedgerEntry
	Result  ledger.Result
}
