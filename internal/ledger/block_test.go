package ledger

import (
	"strings"
	"testing"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/canonical"
	"provenance-ledger/pkg/merkle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Party{Name: "Alice", Email: "alice@example.com"}
	bob   = domain.Party{Name: "Bob", Email: "bob@example.com"}
	carol = domain.Party{Name: "Carol", Email: "carol@example.com"}
	t0    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newTx(t *testing.T, itemID uuid.UUID, p domain.Payload, at time.Time) *domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(itemID, p, at)
	require.NoError(t, err)
	return tx
}

func record(t *testing.T, b *Block) *domain.BlockRecord {
	t.Helper()
	rec, err := b.Record()
	require.NoError(t, err)
	return rec
}

func TestCreateGenesisBlock_Validation(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)

	tests := []struct {
		name    string
		txs     []*domain.Transaction
		prev    string
		number  int64
		wantErr error
	}{
		{"no transactions", nil, ZeroHash, 1, ErrNoTransactions},
		{"zero number", []*domain.Transaction{tx}, ZeroHash, 0, ErrBadBlockNumber},
		{"short previous hash", []*domain.Transaction{tx}, "abc", 1, ErrBadPreviousHash},
		{"upper-case previous hash", []*domain.Transaction{tx}, strings.Repeat("A", 64), 1, ErrBadPreviousHash},
		{"nil transaction", []*domain.Transaction{nil}, ZeroHash, 1, ErrNilTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateGenesisBlock(tt.txs, tt.prev, tt.number, t0, 0)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewBlock_Defaults(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)
	now := t0.Add(1500 * time.Microsecond)

	b, err := NewBlock([]*domain.Transaction{tx}, ZeroHash, 1, now)
	require.NoError(t, err)

	assert.Equal(t, int64(0), b.Nonce)
	assert.Equal(t, domain.NormalizeTime(now), b.Timestamp)
}

func TestZeroHash(t *testing.T) {
	assert.Len(t, ZeroHash, 64)
	assert.True(t, canonical.IsHexDigest(ZeroHash))
}

func TestMerkleRoot_SingleTransactionEqualsTxHash(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)

	b, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)

	assert.Equal(t, tx.Hash, b.MerkleRoot())
}

func TestMerkleRoot_MultipleTransactionsOrdered(t *testing.T) {
	item := uuid.New()
	a := newTx(t, item, domain.CreatePayload{To: alice}, t0)
	b := newTx(t, item, domain.TransferPayload{From: alice, To: bob}, t0.Add(time.Second))
	c := newTx(t, item, domain.TransferPayload{From: bob, To: carol}, t0.Add(2*time.Second))

	blk, err := CreateGenesisBlock([]*domain.Transaction{a, b, c}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)

	want, err := merkle.Root([]string{a.Hash, b.Hash, c.Hash})
	require.NoError(t, err)
	assert.Equal(t, want, blk.MerkleRoot())

	swapped, err := CreateGenesisBlock([]*domain.Transaction{b, a, c}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)
	assert.NotEqual(t, blk.MerkleRoot(), swapped.MerkleRoot())
}

func TestHash_CommitsToHeaderOnly(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)
	b, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 7, t0, 3)
	require.NoError(t, err)

	want, err := canonical.Hash(map[string]any{
		"blockNumber":  7,
		"previousHash": ZeroHash,
		"merkleRoot":   tx.Hash,
		"nonce":        3,
		"timestamp":    "2024-06-01T12:00:00.000Z",
	})
	require.NoError(t, err)
	assert.Equal(t, want, b.Hash())
	assert.True(t, canonical.IsHexDigest(b.Hash()))
}

func TestHash_ChangesWithEachField(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)
	other := newTx(t, uuid.New(), domain.CreatePayload{To: bob}, t0)
	base, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)

	variants := map[string]*Block{
		"number":        {Number: 2, PreviousHash: ZeroHash, Transactions: base.Transactions, Timestamp: t0},
		"previous hash": {Number: 1, PreviousHash: canonical.HashString("x"), Transactions: base.Transactions, Timestamp: t0},
		"transactions":  {Number: 1, PreviousHash: ZeroHash, Transactions: []*domain.Transaction{other}, Timestamp: t0},
		"timestamp":     {Number: 1, PreviousHash: ZeroHash, Transactions: base.Transactions, Timestamp: t0.Add(time.Millisecond)},
		"nonce":         {Number: 1, PreviousHash: ZeroHash, Transactions: base.Transactions, Timestamp: t0, Nonce: 1},
	}

	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, base.Hash(), v.Hash())
		})
	}
}

func TestHash_SubMillisecondTimestampIgnored(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)
	a, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)
	b, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 1, t0.Add(400*time.Microsecond), 0)
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestRecord(t *testing.T) {
	tx := newTx(t, uuid.New(), domain.CreatePayload{To: alice}, t0)
	b, err := CreateGenesisBlock([]*domain.Transaction{tx}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)

	rec, err := b.Record()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Number)
	assert.Equal(t, ZeroHash, rec.PreviousHash)
	assert.Equal(t, b.MerkleRoot(), rec.MerkleRoot)
	assert.Equal(t, b.Hash(), rec.Hash)
	assert.Equal(t, t0, rec.Timestamp)
}

func TestRecord_UnhashableTransaction(t *testing.T) {
	b := &Block{
		Number:       1,
		PreviousHash: ZeroHash,
		Transactions: []*domain.Transaction{{ItemID: uuid.New()}},
		Timestamp:    t0,
	}

	rec, err := b.Record()
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrMissingParty)
}

func TestVerifyTransactionInclusion(t *testing.T) {
	item := uuid.New()
	var txs []*domain.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, newTx(t, item, domain.TransferPayload{From: alice, To: bob}, t0.Add(time.Duration(i)*time.Second)))
	}

	b, err := CreateGenesisBlock(txs, ZeroHash, 1, t0, 0)
	require.NoError(t, err)

	for i := range txs {
		ok, err := b.VerifyTransactionInclusion(i)
		require.NoError(t, err)
		assert.True(t, ok, "index %d", i)
	}

	_, err = b.VerifyTransactionInclusion(5)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestVerifyInclusion_SelectiveDisclosure(t *testing.T) {
	item := uuid.New()
	a := newTx(t, item, domain.CreatePayload{To: alice}, t0)
	b := newTx(t, item, domain.TransferPayload{From: alice, To: bob}, t0.Add(time.Second))
	c := newTx(t, item, domain.TransferPayload{From: bob, To: carol}, t0.Add(2*time.Second))

	blk, err := CreateGenesisBlock([]*domain.Transaction{a, b, c}, ZeroHash, 1, t0, 0)
	require.NoError(t, err)
	proof, err := blk.InclusionProof(1)
	require.NoError(t, err)

	ok, err := VerifyInclusion(b, proof, blk.MerkleRoot(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	tampered := *b
	tampered.Payload = domain.TransferPayload{From: alice, To: carol}
	ok, err = VerifyInclusion(&tampered, proof, blk.MerkleRoot(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
