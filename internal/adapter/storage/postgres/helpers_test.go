package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var uniqueErr = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// beginTx opens a mocked transaction after registering ExpectBegin.
func beginTx(t *testing.T, mock pgxmock.PgxPoolIface) pgx.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func testTime() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 123000000, time.UTC)
}

func ptr[T any](v T) *T { return &v }
