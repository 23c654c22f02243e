package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/internal/ledger"
	"provenance-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	scopeCreate     = "create"
	scopeTransfer   = "transfer"
	defaultNonceTTL = 24 * time.Hour
)

// ItemServiceDeps holds the collaborators of ItemServiceImpl.
type ItemServiceDeps struct {
	ProductLines ports.ProductLineRepository
	Items        ports.ItemRepository
	Blocks       ports.BlockRepository
	Transactions ports.LedgerTransactionRepository
	Transactor   ports.DBTransactor
	Keys         ports.KeyProvider
	Tags         ports.TagService
	Nonces       ports.NonceStore   // nil = request nonces are not checked
	NonceTTL     time.Duration      // 0 = 24h
	Audit        ports.AuditService // nil = audit logging disabled
	Now          func() time.Time   // nil = time.Now
}

// ItemServiceImpl implements ports.ItemService.
type ItemServiceImpl struct {
	lines      ports.ProductLineRepository
	items      ports.ItemRepository
	blocks     ports.BlockRepository
	txs        ports.LedgerTransactionRepository
	transactor ports.DBTransactor
	keys       ports.KeyProvider
	tags       ports.TagService
	nonces     ports.NonceStore
	nonceTTL   time.Duration
	audit      ports.AuditService
	now        func() time.Time
	log        zerolog.Logger
}

// NewItemService creates a new ItemServiceImpl.
func NewItemService(deps ItemServiceDeps, log zerolog.Logger) *ItemServiceImpl {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	nonceTTL := deps.NonceTTL
	if nonceTTL <= 0 {
		nonceTTL = defaultNonceTTL
	}
	return &ItemServiceImpl{
		lines:      deps.ProductLines,
		items:      deps.Items,
		blocks:     deps.Blocks,
		txs:        deps.Transactions,
		transactor: deps.Transactor,
		keys:       deps.Keys,
		tags:       deps.Tags,
		nonces:     deps.Nonces,
		nonceTTL:   nonceTTL,
		audit:      deps.Audit,
		now:        now,
		log:        log,
	}
}

// CreateProductLine registers a new product line with a zero mint counter.
func (s *ItemServiceImpl) CreateProductLine(ctx context.Context, code, name string) (*domain.ProductLine, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.Validation("product line code is required")
	}

	line := &domain.ProductLine{
		ID:        uuid.New(),
		Code:      code,
		Name:      strings.TrimSpace(name),
		CreatedAt: domain.NormalizeTime(s.now()),
	}
	if err := s.lines.Create(ctx, line); err != nil {
		return nil, dbError("create product line", err)
	}

	s.log.Info().Str("code", line.Code).Msg("product line created")
	return line, nil
}

// CreateItem mints a new item: allocates its mint number, records the CREATE
// transaction in a new block and issues the tag link, all in one database
// transaction.
func (s *ItemServiceImpl) CreateItem(ctx context.Context, req ports.CreateItemRequest) (*ports.ItemResult, error) {
	if err := s.claimRequestNonce(ctx, scopeCreate, req.Actor, req.RequestNonce); err != nil {
		return nil, err
	}

	line, err := s.lines.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(req.ProductLineCode)))
	if err != nil {
		return nil, dbError("get product line", err)
	}
	if line == nil {
		return nil, apperror.ErrNotFound("product line")
	}

	// Rotation commits on its own, outside the item transaction.
	key, err := s.keys.CurrentKey(ctx)
	if err != nil {
		return nil, err
	}

	now := domain.NormalizeTime(s.now())
	itemID := uuid.New()

	txn, err := domain.NewTransaction(itemID, domain.CreatePayload{To: req.Owner}, now)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	mint, err := s.lines.NextMintNumber(ctx, dbTx, line.ID)
	if err != nil {
		return nil, dbError("allocate mint number", err)
	}

	item := &domain.Item{
		ID:              itemID,
		ProductLineID:   line.ID,
		MintNumber:      mint,
		SerialNumber:    line.SerialNumber(mint),
		NFCSerialNumber: req.NFCSerialNumber,
		Owner:           req.Owner,
		KeyVersion:      key.Version,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.items.Create(ctx, dbTx, item); err != nil {
		return nil, dbError("create item", err)
	}

	block, err := s.appendBlock(ctx, dbTx, txn, now)
	if err != nil {
		return nil, err
	}

	tagURL, err := s.tags.MintTag(item.ID, item.SerialNumber, item.NFCSerialNumber, key.Key, key.Version)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("item_id", item.ID.String()).
		Str("serial", item.SerialNumber).
		Int64("block", block.Number).
		Msg("item created")

	s.record(ctx, &domain.AuditLog{
		ItemID:       &item.ID,
		Actor:        req.Actor,
		Action:       domain.AuditActionCreateItem,
		ResourceType: "item",
		ResourceID:   item.ID.String(),
		IPAddress:    req.ClientIP,
	}, map[string]any{"block_number": block.Number, "serial_number": item.SerialNumber})

	return &ports.ItemResult{Item: item, Transaction: txn, Block: block, TagURL: tagURL}, nil
}

// TransferItem moves ownership to a new party. The item's chain must verify
// before the transfer is recorded.
func (s *ItemServiceImpl) TransferItem(ctx context.Context, req ports.TransferItemRequest) (*ports.ItemResult, error) {
	if err := s.claimRequestNonce(ctx, scopeTransfer, req.Actor, req.RequestNonce); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.requireValid(ctx, item.ID, req.Actor, req.ClientIP); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.items.GetByIDForUpdate(ctx, dbTx, item.ID)
	if err != nil {
		return nil, dbError("lock item", err)
	}
	if locked == nil {
		return nil, apperror.ErrNotFound("item")
	}
	if locked.Owner == req.NewOwner {
		return nil, apperror.ErrSameOwner()
	}

	now := domain.NormalizeTime(s.now())
	txn, err := domain.NewTransaction(item.ID, domain.TransferPayload{From: locked.Owner, To: req.NewOwner}, now)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	block, err := s.appendBlock(ctx, dbTx, txn, now)
	if err != nil {
		return nil, err
	}

	if err := s.items.UpdateOwner(ctx, dbTx, item.ID, req.NewOwner, now); err != nil {
		return nil, dbError("update owner", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	locked.Owner = req.NewOwner
	locked.UpdatedAt = now

	s.log.Info().
		Str("item_id", item.ID.String()).
		Int64("block", block.Number).
		Msg("item transferred")

	s.record(ctx, &domain.AuditLog{
		ItemID:       &item.ID,
		Actor:        req.Actor,
		Action:       domain.AuditActionTransferItem,
		ResourceType: "item",
		ResourceID:   item.ID.String(),
		IPAddress:    req.ClientIP,
	}, map[string]any{"block_number": block.Number})

	return &ports.ItemResult{Item: locked, Transaction: txn, Block: block}, nil
}

// VerifyItem runs chain verification for an item. An invalid chain is a
// result, not an error.
func (s *ItemServiceImpl) VerifyItem(ctx context.Context, itemID uuid.UUID) (ledger.Result, error) {
	if _, err := s.getItem(ctx, itemID); err != nil {
		return ledger.Result{}, err
	}

	_, result, err := s.verify(ctx, itemID)
	if err != nil {
		return ledger.Result{}, err
	}
	if !result.IsValid() {
		s.tamper(ctx, itemID, result, "", "")
	}
	return result, nil
}

// ItemHistory returns the item's ownership chain after verifying it.
func (s *ItemServiceImpl) ItemHistory(ctx context.Context, itemID uuid.UUID) (*ports.ItemHistory, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	entries, result, err := s.requireValid(ctx, itemID, "", "")
	if err != nil {
		return nil, err
	}
	return &ports.ItemHistory{Item: item, Entries: entries, Result: result}, nil
}

// ScanTag opens a tag link, checks it names a known item and returns that
// item's verified history.
func (s *ItemServiceImpl) ScanTag(ctx context.Context, req ports.ScanTagRequest) (*ports.ItemHistory, error) {
	identity, err := s.tags.OpenTag(ctx, req.Token, req.Version)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, identity.ItemID)
	if err != nil {
		return nil, dbError("get item", err)
	}
	if item == nil || !item.Matches(*identity) {
		s.log.Warn().
			Str("item_id", identity.ItemID.String()).
			Bool("item_found", item != nil).
			Msg("tag identity does not match a stored item")
		return nil, apperror.ErrInvalidTag()
	}

	entries, result, err := s.requireValid(ctx, item.ID, "", req.ClientIP)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.AuditLog{
		ItemID:       &item.ID,
		Action:       domain.AuditActionScanTag,
		ResourceType: "item",
		ResourceID:   item.ID.String(),
		IPAddress:    req.ClientIP,
	}, map[string]any{"key_version": req.Version})

	return &ports.ItemHistory{Item: item, Entries: entries, Result: result}, nil
}

func (s *ItemServiceImpl) getItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, dbError("get item", err)
	}
	if item == nil {
		return nil, apperror.ErrNotFound("item")
	}
	return item, nil
}

// verify loads the contiguous global segment from the block before the
// item's first one to its last, verifies it, and projects it onto the item.
// Starting one block early makes the link into the item's CREATE block part
// of the check.
func (s *ItemServiceImpl) verify(ctx context.Context, itemID uuid.UUID) ([]domain.LedgerEntry, ledger.Result, error) {
	first, last, found, err := s.txs.BlockRange(ctx, itemID)
	if err != nil {
		return nil, ledger.Result{}, dbError("item block range", err)
	}
	if !found {
		return nil, ledger.VerifyChain(nil), nil
	}

	start := first
	if start > 1 {
		start--
	}
	segment, err := s.txs.ListRange(ctx, start, last)
	if err != nil {
		return nil, ledger.Result{}, dbError("list ledger segment", err)
	}

	events := ledger.ProjectItem(segment, itemID)
	result := ledger.VerifySegment(segment, start)
	if result.IsValid() {
		result = ledger.VerifyOwnership(events)
	}
	return events, result, nil
}

// requireValid verifies the item's chain and turns an invalid result into a
// tamper error after auditing it.
func (s *ItemServiceImpl) requireValid(ctx context.Context, itemID uuid.UUID, actor, ip string) ([]domain.LedgerEntry, ledger.Result, error) {
	entries, result, err := s.verify(ctx, itemID)
	if err != nil {
		return nil, result, err
	}
	if !result.IsValid() {
		s.tamper(ctx, itemID, result, actor, ip)
		return nil, result, apperror.ErrTamperDetected(result.Reason).
			WithDetails(map[string]int64{"block_number": result.BlockNumber})
	}
	return entries, result, nil
}

func (s *ItemServiceImpl) tamper(ctx context.Context, itemID uuid.UUID, result ledger.Result, actor, ip string) {
	s.log.Error().
		Str("item_id", itemID.String()).
		Str("reason", result.Reason).
		Int64("block", result.BlockNumber).
		Msg("ledger tamper detected")

	s.record(ctx, &domain.AuditLog{
		ItemID:       &itemID,
		Actor:        actor,
		Action:       domain.AuditActionTamperDetected,
		ResourceType: "item",
		ResourceID:   itemID.String(),
		IPAddress:    ip,
	}, map[string]any{"reason": result.Reason, "block_number": result.BlockNumber})
}

// appendBlock allocates the next global block under the ledger lock and
// persists it together with its single transaction.
func (s *ItemServiceImpl) appendBlock(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction, now time.Time) (*domain.BlockRecord, error) {
	if err := s.blocks.LockLedger(ctx, dbTx); err != nil {
		return nil, dbError("lock ledger", err)
	}

	latest, err := s.blocks.GetLatest(ctx, dbTx)
	if err != nil {
		return nil, dbError("get latest block", err)
	}

	previousHash, number := ledger.ZeroHash, int64(1)
	if latest != nil {
		previousHash, number = latest.Hash, latest.Number+1
	}

	block, err := ledger.CreateGenesisBlock([]*domain.Transaction{txn}, previousHash, number, now, 0)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build block %d: %w", number, err))
	}

	record, err := block.Record()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("seal block %d: %w", number, err))
	}
	if err := s.blocks.Create(ctx, dbTx, record); err != nil {
		return nil, dbError("create block", err)
	}

	txn.BlockNumber = record.Number
	if err := s.txs.Create(ctx, dbTx, txn); err != nil {
		return nil, dbError("create ledger transaction", err)
	}

	return record, nil
}

// claimRequestNonce rejects a client request nonce the same actor already
// used for this operation within the replay window. A nonce stays claimed even
// when the request later fails, so a retry needs a fresh one. A Redis failure
// lets the request through.
func (s *ItemServiceImpl) claimRequestNonce(ctx context.Context, op, actor, nonce string) error {
	if s.nonces == nil || nonce == "" {
		return nil
	}
	fresh, err := s.nonces.CheckAndSet(ctx, op+":"+actor, nonce, s.nonceTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("nonce store check failed, allowing request")
		return nil
	}
	if !fresh {
		s.log.Warn().Str("op", op).Str("actor", actor).Msg("request nonce replayed")
		return apperror.ErrDuplicateSubmission()
	}
	return nil
}

func (s *ItemServiceImpl) record(ctx context.Context, entry *domain.AuditLog, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry.ID = uuid.New()
	entry.CreatedAt = domain.NormalizeTime(s.now())
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}
	s.audit.Log(ctx, entry)
}
