// Package ledger holds the block format and the chain verifier. Everything
// here is pure: no I/O, no clocks other than the ones passed in.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/canonical"
	"provenance-ledger/pkg/merkle"
)

// ZeroHash is the previous hash of the first block in the ledger.
var ZeroHash = strings.Repeat("0", 64)

var (
	ErrNoTransactions   = errors.New("block has no transactions")
	ErrBadPreviousHash  = errors.New("previous hash is not a 64-char lower-case hex digest")
	ErrBadBlockNumber   = errors.New("block number must be positive")
	ErrNilTransaction   = errors.New("block contains a nil transaction")
	ErrIndexOutOfBounds = errors.New("transaction index out of range")
)

// Block bundles transactions with the linkage metadata that the block hash
// commits to. The transaction list itself is represented only by its
// Merkle root.
type Block struct {
	Number       int64
	PreviousHash string
	Transactions []*domain.Transaction
	Timestamp    time.Time
	Nonce        int64
}

// header is exactly the set of fields hashed for a block.
type header struct {
	BlockNumber  int64  `json:"blockNumber"`
	PreviousHash string `json:"previousHash"`
	MerkleRoot   string `json:"merkleRoot"`
	Nonce        int64  `json:"nonce"`
	Timestamp    string `json:"timestamp"`
}

// NewBlock builds a block stamped with now and a zero nonce.
func NewBlock(txs []*domain.Transaction, previousHash string, number int64, now time.Time) (*Block, error) {
	return CreateGenesisBlock(txs, previousHash, number, now, 0)
}

// CreateGenesisBlock builds any block of the ledger, not only the first one.
// Callers that persist the block must pass the same timestamp they store.
func CreateGenesisBlock(txs []*domain.Transaction, previousHash string, number int64, timestamp time.Time, nonce int64) (*Block, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	if number < 1 {
		return nil, ErrBadBlockNumber
	}
	if !canonical.IsHexDigest(previousHash) {
		return nil, ErrBadPreviousHash
	}
	for i, tx := range txs {
		if tx == nil || tx.Payload == nil {
			return nil, fmt.Errorf("%w at position %d", ErrNilTransaction, i)
		}
	}

	b := Block{
		Number:       number,
		PreviousHash: previousHash,
		Transactions: txs,
		Timestamp:    domain.NormalizeTime(timestamp),
		Nonce:        nonce,
	}

	return &b, nil
}

// tree builds the Merkle tree over the canonical hashes of the transactions
// in the order they are held.
func (b *Block) tree() (*merkle.Tree, error) {
	leaves := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		h, err := tx.ComputeHash()
		if err != nil {
			return nil, fmt.Errorf("hash transaction %d: %w", i, err)
		}
		leaves[i] = h
	}
	return merkle.New(leaves)
}

// root computes the Merkle root and reports a transaction that cannot be
// hashed instead of masking it.
func (b *Block) root() (string, error) {
	t, err := b.tree()
	if err != nil {
		return "", err
	}
	return t.Root(), nil
}

// digest returns the Merkle root and the header hash, or the first hashing
// error.
func (b *Block) digest() (string, string, error) {
	root, err := b.root()
	if err != nil {
		return "", "", err
	}
	h, err := canonical.Hash(header{
		BlockNumber:  b.Number,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   root,
		Nonce:        b.Nonce,
		Timestamp:    domain.FormatTime(b.Timestamp),
	})
	if err != nil {
		return "", "", fmt.Errorf("hash block %d header: %w", b.Number, err)
	}
	return root, h, nil
}

// MerkleRoot returns the root over the block's transactions.
//
// CreateGenesisBlock rejects nil transactions and payloads, which are the only
// inputs that fail to hash, so the ZeroHash fallback is unreachable for
// blocks it builds. Code that persists or compares hashes uses Record or
// VerifyChain, which surface the error instead.
func (b *Block) MerkleRoot() string {
	root, err := b.root()
	if err != nil {
		return ZeroHash
	}
	return root
}

// Hash returns the canonical hash of the block header, with the same
// ZeroHash fallback as MerkleRoot.
func (b *Block) Hash() string {
	_, h, err := b.digest()
	if err != nil {
		return ZeroHash
	}
	return h
}

// Record returns the row to persist for this block.
func (b *Block) Record() (*domain.BlockRecord, error) {
	root, h, err := b.digest()
	if err != nil {
		return nil, err
	}
	return &domain.BlockRecord{
		Number:       b.Number,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   root,
		Nonce:        b.Nonce,
		Timestamp:    b.Timestamp,
		Hash:         h,
	}, nil
}

// InclusionProof returns the Merkle proof for the transaction at index.
func (b *Block) InclusionProof(index int) ([]string, error) {
	if index < 0 || index >= len(b.Transactions) {
		return nil, ErrIndexOutOfBounds
	}
	t, err := b.tree()
	if err != nil {
		return nil, err
	}
	return t.Proof(index)
}

// VerifyTransactionInclusion recomputes the leaf hash of the transaction at
// index and checks it against the block's Merkle root through its proof.
func (b *Block) VerifyTransactionInclusion(index int) (bool, error) {
	proof, err := b.InclusionProof(index)
	if err != nil {
		return false, err
	}
	return VerifyInclusion(b.Transactions[index], proof, b.MerkleRoot(), index)
}

// VerifyInclusion checks a single transaction against a Merkle root without
// the rest of the block. Used for selective disclosure.
func VerifyInclusion(tx *domain.Transaction, proof []string, merkleRoot string, index int) (bool, error) {
	leaf, err := tx.ComputeHash()
	if err != nil {
		return false, fmt.Errorf("hash transaction: %w", err)
	}
	return merkle.Verify(leaf, proof, merkleRoot, index), nil
}
