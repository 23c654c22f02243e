package ledger

import (
	"fmt"

	"provenance-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// Result is the outcome of a chain verification. Reason and BlockNumber are
// set only when Valid is false; BlockNumber is 0 when no block is involved.
type Result struct {
	Valid       bool   `json:"is_valid"`
	Reason      string `json:"error,omitempty"`
	BlockNumber int64  `json:"block_number,omitempty"`
}

// IsValid reports whether the chain verified.
func (r Result) IsValid() bool { return r.Valid }

// Valid is the result of a chain that passed every check.
func Valid() Result { return Result{Valid: true} }

// Invalid builds a failed result.
func Invalid(reason string, blockNumber int64) Result {
	return Result{Reason: reason, BlockNumber: blockNumber}
}

// VerifyChain checks an ordered history of (transaction, block) pairs and
// reports the first failure found. Each block is rebuilt from its persisted
// number, previous hash, nonce and timestamp plus its single transaction; the
// rebuilt hash and Merkle root must match the stored ones and every block
// after the first must link to the hash of the entry before it. A
// transaction that could not be decoded from storage fails as a hash
// mismatch of its block.
//
// VerifyChain never mutates the history.
func VerifyChain(history []domain.LedgerEntry) Result {
	if len(history) == 0 {
		return Invalid("no transactions", 0)
	}

	for i, entry := range history {
		stored := entry.Block
		if stored == nil || entry.Transaction == nil {
			return Invalid(fmt.Sprintf("missing block for transaction at position %d", i), 0)
		}
		if entry.DecodeErr != nil {
			return hashMismatch(stored.Number)
		}

		rebuilt, err := CreateGenesisBlock(
			[]*domain.Transaction{entry.Transaction},
			stored.PreviousHash,
			stored.Number,
			stored.Timestamp,
			stored.Nonce,
		)
		if err != nil {
			return hashMismatch(stored.Number)
		}
		root, hash, err := rebuilt.digest()
		if err != nil || hash != stored.Hash {
			return hashMismatch(stored.Number)
		}

		if root != stored.MerkleRoot {
			return Invalid(fmt.Sprintf("merkle mismatch at block %d", stored.Number), stored.Number)
		}

		if i > 0 && stored.PreviousHash != history[i-1].Block.Hash {
			return brokenLink(stored.Number)
		}
	}

	return Valid()
}

// VerifySegment runs VerifyChain over a slice of the global ledger that is
// expected to start at block start. The head must be that block, and block 1
// must carry ZeroHash as its previous hash.
func VerifySegment(segment []domain.LedgerEntry, start int64) Result {
	if r := VerifyChain(segment); !r.IsValid() {
		return r
	}

	head := segment[0].Block
	if head.Number != start {
		return brokenLink(head.Number)
	}
	if start == 1 && head.PreviousHash != ZeroHash {
		return brokenLink(1)
	}
	return Valid()
}

// VerifyOwnership checks the events of one item in block order: exactly one
// CREATE, first, and every TRANSFER starting from the owner the previous
// event left behind.
func VerifyOwnership(events []domain.LedgerEntry) Result {
	if len(events) == 0 {
		return Invalid("no transactions", 0)
	}

	var owner domain.Party
	for i, e := range events {
		number := e.Transaction.BlockNumber
		if e.Block != nil {
			number = e.Block.Number
		}

		switch p := e.Transaction.Payload.(type) {
		case domain.CreatePayload:
			if i > 0 {
				return Invalid(fmt.Sprintf("unexpected CREATE at block %d", number), number)
			}
			owner = p.To
		case domain.TransferPayload:
			if i == 0 {
				return Invalid(fmt.Sprintf("missing CREATE before block %d", number), number)
			}
			if p.From != owner {
				return Invalid(fmt.Sprintf("ownership break at block %d", number), number)
			}
			owner = p.To
		default:
			return hashMismatch(number)
		}
	}
	return Valid()
}

func hashMismatch(block int64) Result {
	return Invalid(fmt.Sprintf("hash mismatch at block %d", block), block)
}

func brokenLink(block int64) Result {
	return Invalid(fmt.Sprintf("broken chain link at block %d", block), block)
}

// ProjectItem returns the entries of history that belong to itemID, keeping
// their order.
func ProjectItem(history []domain.LedgerEntry, itemID uuid.UUID) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, e := range history {
		if e.Transaction != nil && e.Transaction.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out
}
