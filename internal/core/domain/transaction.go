package domain

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"provenance-ledger/pkg/canonical"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of ownership event.
type TransactionKind string

const (
	TransactionKindCreate   TransactionKind = "CREATE"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindCreate || k == TransactionKindTransfer
}

// Party identifies an owner on either side of an event.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Payload is the event body. It is implemented only by CreatePayload and
// TransferPayload; switch on the concrete type to handle each variant.
type Payload interface {
	Kind() TransactionKind
	isPayload()
}

// CreatePayload records the first owner of a newly minted item.
type CreatePayload struct {
	To Party `json:"to"`
}

func (CreatePayload) Kind() TransactionKind { return TransactionKindCreate }
func (CreatePayload) isPayload()            {}

// TransferPayload records a change of owner.
type TransferPayload struct {
	From Party `json:"from"`
	To   Party `json:"to"`
}

func (TransferPayload) Kind() TransactionKind { return TransactionKindTransfer }
func (TransferPayload) isPayload()            {}

var (
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")
	ErrMissingParty           = errors.New("payload is missing a party")
)

// DecodePayload parses a stored data column into the variant named by kind.
func DecodePayload(kind TransactionKind, raw []byte) (Payload, error) {
	switch kind {
	case TransactionKindCreate:
		var p struct {
			To *Party `json:"to"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		if p.To == nil {
			return nil, fmt.Errorf("decode %s payload: %w: to", kind, ErrMissingParty)
		}
		return CreatePayload{To: *p.To}, nil
	case TransactionKindTransfer:
		var p struct {
			From *Party `json:"from"`
			To   *Party `json:"to"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		if p.From == nil {
			return nil, fmt.Errorf("decode %s payload: %w: from", kind, ErrMissingParty)
		}
		if p.To == nil {
			return nil, fmt.Errorf("decode %s payload: %w: to", kind, ErrMissingParty)
		}
		return TransferPayload{From: *p.From, To: *p.To}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransactionKind, kind)
	}
}

// Transaction is an immutable fact about one item. Once persisted it is never
// updated or deleted.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	BlockNumber int64     `json:"block_number"`
	Payload     Payload   `json:"data"`
	Timestamp   time.Time `json:"timestamp"`
	Nonce       string    `json:"nonce"` // 64 lower-case hex chars
	Hash        string    `json:"hash"`
}

// Kind returns the payload kind, or "" when no payload is set.
func (t *Transaction) Kind() TransactionKind {
	if t.Payload == nil {
		return ""
	}
	return t.Payload.Kind()
}

type transactionView struct {
	Type      TransactionKind `json:"type"`
	ItemID    string          `json:"itemId"`
	Data      Payload         `json:"data"`
	Timestamp string          `json:"timestamp"`
	Nonce     string          `json:"nonce"`
}

// CanonicalView returns exactly the fields committed to by the transaction hash.
func (t *Transaction) CanonicalView() any {
	return transactionView{
		Type:      t.Kind(),
		ItemID:    t.ItemID.String(),
		Data:      t.Payload,
		Timestamp: FormatTime(t.Timestamp),
		Nonce:     t.Nonce,
	}
}

// ComputeHash recomputes the transaction hash from its committed fields.
func (t *Transaction) ComputeHash() (string, error) {
	if t.Payload == nil {
		return "", ErrMissingParty
	}
	return canonical.Hash(t.CanonicalView())
}

// NewTransaction builds a transaction with a fresh id and nonce, a
// millisecond-normalized timestamp, and its hash already computed.
func NewTransaction(itemID uuid.UUID, payload Payload, now time.Time) (*Transaction, error) {
	nonce, err := NewTransactionNonce()
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:        uuid.New(),
		ItemID:    itemID,
		Payload:   payload,
		Timestamp: NormalizeTime(now),
		Nonce:     nonce,
	}

	tx.Hash, err = tx.ComputeHash()
	if err != nil {
		return nil, fmt.Errorf("hash transaction: %w", err)
	}
	return tx, nil
}

// NewTransactionNonce returns 256 random bits as lower-case hex.
func NewTransactionNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
