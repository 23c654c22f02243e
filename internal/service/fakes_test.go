package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/canonical"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testMasterKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memStore is an in-memory ledger database. Writes made through a memTx are
// applied on commit; the ledger lock is held from LockLedger until the
// transaction ends.
type memStore struct {
	mu       sync.Mutex
	ledgerMu sync.Mutex

	lines  map[string]*domain.ProductLine
	items  map[uuid.UUID]*domain.Item
	blocks map[int64]*domain.BlockRecord
	txs    []*domain.Transaction
	epochs []*domain.KeyEpoch

	// kinds overrides the stored transaction_type of a transaction, by id.
	kinds map[uuid.UUID]domain.TransactionKind
}

func newMemStore() *memStore {
	return &memStore{
		lines:  make(map[string]*domain.ProductLine),
		items:  make(map[uuid.UUID]*domain.Item),
		blocks: make(map[int64]*domain.BlockRecord),
		kinds:  make(map[uuid.UUID]domain.TransactionKind),
	}
}

func (s *memStore) latestBlock() *domain.BlockRecord {
	var latest *domain.BlockRecord
	for _, b := range s.blocks {
		if latest == nil || b.Number > latest.Number {
			latest = b
		}
	}
	return latest
}

// block returns the stored row so tests can tamper with it.
func (s *memStore) block(n int64) *domain.BlockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks[n]
}

type memTx struct {
	pgx.Tx
	store   *memStore
	pending []func()
	locked  bool
	done    bool
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, op := range t.pending {
		op()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *memTx) finish() {
	t.done = true
	if t.locked {
		t.locked = false
		t.store.ledgerMu.Unlock()
	}
}

type memTransactor struct{ store *memStore }

func (m memTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	return &memTx{store: m.store}, nil
}

type memLines struct{ store *memStore }

func (r memLines) Create(_ context.Context, line *domain.ProductLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.lines[line.Code]; ok {
		return apperror.Validation("product line code already exists")
	}
	cp := *line
	r.store.lines[line.Code] = &cp
	return nil
}

func (r memLines) GetByCode(_ context.Context, code string) (*domain.ProductLine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	line, ok := r.store.lines[code]
	if !ok {
		return nil, nil
	}
	cp := *line
	return &cp, nil
}

func (r memLines) NextMintNumber(_ context.Context, _ pgx.Tx, id uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, line := range r.store.lines {
		if line.ID == id {
			line.MintCounter++
			return line.MintCounter, nil
		}
	}
	return 0, errors.New("product line not found")
}

type memItems struct{ store *memStore }

func (r memItems) Create(_ context.Context, tx pgx.Tx, item *domain.Item) error {
	cp := *item
	mt := tx.(*memTx)
	mt.pending = append(mt.pending, func() { r.store.items[cp.ID] = &cp })
	return nil
}

func (r memItems) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r memItems) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Item, error) {
	return r.GetByID(ctx, id)
}

func (r memItems) UpdateOwner(_ context.Context, tx pgx.Tx, id uuid.UUID, owner domain.Party, updatedAt time.Time) error {
	mt := tx.(*memTx)
	mt.pending = append(mt.pending, func() {
		r.store.items[id].Owner = owner
		r.store.items[id].UpdatedAt = updatedAt
	})
	return nil
}

type memBlocks struct{ store *memStore }

func (r memBlocks) LockLedger(_ context.Context, tx pgx.Tx) error {
	mt := tx.(*memTx)
	if !mt.locked {
		r.store.ledgerMu.Lock()
		mt.locked = true
	}
	return nil
}

func (r memBlocks) GetLatest(_ context.Context, _ pgx.Tx) (*domain.BlockRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	latest := r.store.latestBlock()
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r memBlocks) Create(_ context.Context, tx pgx.Tx, block *domain.BlockRecord) error {
	r.store.mu.Lock()
	_, exists := r.store.blocks[block.Number]
	r.store.mu.Unlock()
	if exists {
		return apperror.ErrAllocationConflict(errors.New("duplicate block number"))
	}
	cp := *block
	mt := tx.(*memTx)
	mt.pending = append(mt.pending, func() { r.store.blocks[cp.Number] = &cp })
	return nil
}

type memLedgerTxs struct{ store *memStore }

func (r memLedgerTxs) Create(_ context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	cp := *txn
	mt := tx.(*memTx)
	mt.pending = append(mt.pending, func() { r.store.txs = append(r.store.txs, &cp) })
	return nil
}

func (r memLedgerTxs) BlockRange(_ context.Context, itemID uuid.UUID) (int64, int64, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var first, last int64
	found := false
	for _, t := range r.store.txs {
		if t.ItemID != itemID {
			continue
		}
		if !found || t.BlockNumber < first {
			first = t.BlockNumber
		}
		if !found || t.BlockNumber > last {
			last = t.BlockNumber
		}
		found = true
	}
	return first, last, found, nil
}

func (r memLedgerTxs) ListRange(_ context.Context, first, last int64) ([]domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.LedgerEntry
	for _, t := range r.store.txs {
		if t.BlockNumber < first || t.BlockNumber > last {
			continue
		}
		txCopy := *t
		entry := domain.LedgerEntry{Transaction: &txCopy}
		if kind, ok := r.store.kinds[t.ID]; ok {
			// Read the row back the way the database adapter does.
			data, err := canonical.Bytes(t.Payload)
			if err != nil {
				return nil, err
			}
			txCopy.Payload, entry.DecodeErr = domain.DecodePayload(kind, data)
		}
		if b, ok := r.store.blocks[t.BlockNumber]; ok {
			bCopy := *b
			entry.Block = &bCopy
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Transaction.BlockNumber < out[j].Transaction.BlockNumber
	})
	return out, nil
}

type memEpochs struct{ store *memStore }

func (r memEpochs) GetLatest(_ context.Context) (*domain.KeyEpoch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if len(r.store.epochs) == 0 {
		return nil, nil
	}
	cp := *r.store.epochs[len(r.store.epochs)-1]
	return &cp, nil
}

func (r memEpochs) GetByVersion(_ context.Context, version string) (*domain.KeyEpoch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.epochs {
		if e.Version == version {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memEpochs) CreateIfNoneActive(_ context.Context, epoch *domain.KeyEpoch, now time.Time) (*domain.KeyEpoch, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if n := len(r.store.epochs); n > 0 {
		latest := r.store.epochs[n-1]
		if !latest.IsExpired(now) {
			cp := *latest
			return &cp, false, nil
		}
	}
	cp := *epoch
	r.store.epochs = append(r.store.epochs, &cp)
	return epoch, true, nil
}

func (r memEpochs) count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.epochs)
}

type memNonces struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (n *memNonces) CheckAndSet(_ context.Context, scope, nonce string, _ time.Duration) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen == nil {
		n.seen = make(map[string]bool)
	}
	key := scope + ":" + nonce
	if n.seen[key] {
		return false, nil
	}
	n.seen[key] = true
	return true, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (a *recordingAudit) Log(_ context.Context, entry *domain.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}
