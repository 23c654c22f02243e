package dto

import (
	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/internal/ledger"
)

// PartyRequest names an owner in a request body.
type PartyRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"required,email,max=254"`
}

// Party converts the request into the domain type.
func (p PartyRequest) Party() domain.Party {
	return domain.Party{Name: p.Name, Email: p.Email}
}

// CreateProductLineRequest is the request body for registering a product line.
type CreateProductLineRequest struct {
	Code string `json:"code" binding:"required,product_code"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// CreateItemRequest is the request body for minting an item.
type CreateItemRequest struct {
	ProductLineCode string       `json:"product_line_code" binding:"required,product_code"`
	NFCSerialNumber string       `json:"nfc_serial_number" binding:"required,nfc_serial"`
	Owner           PartyRequest `json:"owner"`
	RequestNonce    string       `json:"request_nonce" binding:"omitempty,request_nonce"`
}

// TransferRequest is the request body for an ownership transfer.
type TransferRequest struct {
	NewOwner     PartyRequest `json:"new_owner"`
	RequestNonce string       `json:"request_nonce" binding:"omitempty,request_nonce"`
}

// ScanQuery holds the query parameters carried by a tag link.
type ScanQuery struct {
	Key     string `form:"key" binding:"required,max=512"`
	Version string `form:"version" binding:"required,len=6,hexadecimal"`
}

// ProductLineResponse is the response body for a product line.
type ProductLineResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	MintCounter int64  `json:"mint_counter"`
	CreatedAt   string `json:"created_at"`
}

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID              string       `json:"id"`
	ProductLineID   string       `json:"product_line_id"`
	MintNumber      int64        `json:"mint_number"`
	SerialNumber    string       `json:"serial_number"`
	NFCSerialNumber string       `json:"nfc_serial_number"`
	Owner           domain.Party `json:"owner"`
	KeyVersion      string       `json:"key_version"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// BlockResponse is a persisted block header.
type BlockResponse struct {
	BlockNumber  int64  `json:"block_number"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
	Nonce        int64  `json:"nonce"`
	Timestamp    string `json:"timestamp"`
	Hash         string `json:"hash"`
}

// TransactionResponse is a ledger transaction.
type TransactionResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	ItemID      string         `json:"item_id"`
	BlockNumber int64          `json:"block_number"`
	Data        domain.Payload `json:"data"`
	Timestamp   string         `json:"timestamp"`
	Nonce       string         `json:"nonce"`
	Hash        string         `json:"hash"`
}

// LedgerEntryResponse pairs a transaction with its block.
type LedgerEntryResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Block       *BlockResponse      `json:"block,omitempty"`
}

// ItemResultResponse is returned by create and transfer.
type ItemResultResponse struct {
	Item        ItemResponse        `json:"item"`
	Transaction TransactionResponse `json:"transaction"`
	Block       BlockResponse       `json:"block"`
	TagURL      string              `json:"tag_url,omitempty"`
}

// VerifyResponse is the outcome of a chain verification.
type VerifyResponse struct {
	ItemID      string `json:"item_id"`
	IsValid     bool   `json:"is_valid"`
	Error       string `json:"error,omitempty"`
	BlockNumber int64  `json:"block_number,omitempty"`
}

// HistoryResponse is an item with its verified ownership chain.
type HistoryResponse struct {
	Item         ItemResponse          `json:"item"`
	Verification VerifyResponse        `json:"verification"`
	History      []LedgerEntryResponse `json:"history"`
}

func ToProductLineResponse(p *domain.ProductLine) ProductLineResponse {
	return ProductLineResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		MintCounter: p.MintCounter,
		CreatedAt:   domain.FormatTime(p.CreatedAt),
	}
}

func ToItemResponse(i *domain.Item) ItemResponse {
	return ItemResponse{
		ID:              i.ID.String(),
		ProductLineID:   i.ProductLineID.String(),
		MintNumber:      i.MintNumber,
		SerialNumber:    i.SerialNumber,
		NFCSerialNumber: i.NFCSerialNumber,
		Owner:           i.Owner,
		KeyVersion:      i.KeyVersion,
		CreatedAt:       domain.FormatTime(i.CreatedAt),
		UpdatedAt:       domain.FormatTime(i.UpdatedAt),
	}
}

func ToBlockResponse(b *domain.BlockRecord) BlockResponse {
	return BlockResponse{
		BlockNumber:  b.Number,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   b.MerkleRoot,
		Nonce:        b.Nonce,
		Timestamp:    domain.FormatTime(b.Timestamp),
		Hash:         b.Hash,
	}
}

func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		Type:        string(t.Kind()),
		ItemID:      t.ItemID.String(),
		BlockNumber: t.BlockNumber,
		Data:        t.Payload,
		Timestamp:   domain.FormatTime(t.Timestamp),
		Nonce:       t.Nonce,
		Hash:        t.Hash,
	}
}

func ToItemResultResponse(r *ports.ItemResult) ItemResultResponse {
	return ItemResultResponse{
		Item:        ToItemResponse(r.Item),
		Transaction: ToTransactionResponse(r.Transaction),
		Block:       ToBlockResponse(r.Block),
		TagURL:      r.TagURL,
	}
}

func ToVerifyResponse(itemID string, res ledger.Result) VerifyResponse {
	return VerifyResponse{
		ItemID:      itemID,
		IsValid:     res.IsValid(),
		Error:       res.Reason,
		BlockNumber: res.BlockNumber,
	}
}

// ToHistoryResponse renders a verified history. Entries are listed oldest first.
func ToHistoryResponse(h *ports.ItemHistory) HistoryResponse {
	out := HistoryResponse{
		Item:         ToItemResponse(h.Item),
		Verification: ToVerifyResponse(h.Item.ID.String(), h.Result),
		History:      make([]LedgerEntryResponse, 0, len(h.Entries)),
	}
	for _, e := range h.Entries {
		entry := LedgerEntryResponse{Transaction: ToTransactionResponse(e.Transaction)}
		if e.Block != nil {
			b := ToBlockResponse(e.Block)
			entry.Block = &b
		}
		out.History = append(out.History, entry)
	}
	return out
}
