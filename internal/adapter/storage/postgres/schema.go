package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS product_lines (
	id           UUID PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL DEFAULT '',
	mint_counter BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS key_epochs (
	version     CHAR(6) PRIMARY KEY,
	wrapped_key TEXT NOT NULL,
	active_from TIMESTAMPTZ NOT NULL,
	active_to   TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id                UUID PRIMARY KEY,
	product_line_id   UUID NOT NULL REFERENCES product_lines(id),
	mint_number       BIGINT NOT NULL,
	serial_number     TEXT NOT NULL UNIQUE,
	nfc_serial_number TEXT NOT NULL UNIQUE,
	owner_name        TEXT NOT NULL,
	owner_email       TEXT NOT NULL,
	key_version       CHAR(6) NOT NULL REFERENCES key_epochs(version),
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	UNIQUE (product_line_id, mint_number)
);

CREATE TABLE IF NOT EXISTS blocks (
	block_number  BIGINT PRIMARY KEY,
	previous_hash CHAR(64) NOT NULL,
	merkle_root   CHAR(64) NOT NULL,
	nonce         BIGINT NOT NULL DEFAULT 0,
	timestamp     TIMESTAMPTZ NOT NULL,
	hash          CHAR(64) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS ledger_transactions (
	id               UUID PRIMARY KEY,
	item_id          UUID NOT NULL REFERENCES items(id),
	block_number     BIGINT NOT NULL REFERENCES blocks(block_number),
	transaction_type TEXT NOT NULL,
	data             JSONB NOT NULL,
	timestamp        TIMESTAMPTZ NOT NULL,
	nonce            CHAR(64) NOT NULL UNIQUE,
	hash             CHAR(64) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_transactions_item ON ledger_transactions (item_id, block_number);
CREATE INDEX IF NOT EXISTS idx_ledger_transactions_block ON ledger_transactions (block_number);

CREATE TABLE IF NOT EXISTS audit_logs (
	id            UUID PRIMARY KEY,
	item_id       UUID,
	actor         TEXT NOT NULL DEFAULT '',
	action        TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL DEFAULT '',
	details       JSONB,
	ip_address    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_item ON audit_logs (item_id, created_at);
`

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
