package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProductLine groups items that share a serial prefix and mint counter.
type ProductLine struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	MintCounter int64     `json:"mint_counter"`
	CreatedAt   time.Time `json:"created_at"`
}

// SerialNumber formats the serial for the given mint number.
func (p *ProductLine) SerialNumber(mintNumber int64) string {
	return fmt.Sprintf("%s-%06d", p.Code, mintNumber)
}

// Item is a physical good tracked by the ledger.
type Item struct {
	ID              uuid.UUID `json:"id"`
	ProductLineID   uuid.UUID `json:"product_line_id"`
	MintNumber      int64     `json:"mint_number"`
	SerialNumber    string    `json:"serial_number"`
	NFCSerialNumber string    `json:"nfc_serial_number"`
	Owner           Party     `json:"owner"`
	KeyVersion      string    `json:"key_version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Matches reports whether a decoded tag identity names this item.
func (i *Item) Matches(id TagIdentity) bool {
	return i.ID == id.ItemID &&
		i.SerialNumber == id.SerialNumber &&
		i.NFCSerialNumber == id.NFCSerialNumber
}

// TagIdentity is the plaintext sealed inside a tag token.
type TagIdentity struct {
	ItemID          uuid.UUID `json:"itemId"`
	SerialNumber    string    `json:"serialNumber"`
	NFCSerialNumber string    `json:"nfcSerialNumber"`
}
