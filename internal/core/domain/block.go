package domain

import "time"

// BlockRecord is a block row as persisted. Hash is never trusted without
// recomputing it from the other five fields.
type BlockRecord struct {
	Number       int64     `json:"block_number"`
	PreviousHash string    `json:"previous_hash"`
	MerkleRoot   string    `json:"merkle_root"`
	Nonce        int64     `json:"nonce"`
	Timestamp    time.Time `json:"timestamp"`
	Hash         string    `json:"hash"`
}

// LedgerEntry joins a transaction to the block that holds it.
// Block is nil when the block row is missing. DecodeErr is set when the stored
// kind or data could not be read back; the transaction then has no payload
// and can never verify.
type LedgerEntry struct {
	Transaction *Transaction
	Block       *BlockRecord
	DecodeErr   error
}
