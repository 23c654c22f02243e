package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/pkg/apperror"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEpoch(version string, from time.Time) *domain.KeyEpoch {
	return &domain.KeyEpoch{
		Version:    version,
		WrappedKey: "d3JhcHBlZC1rZXk=",
		ActiveFrom: from,
		ActiveTo:   from.AddDate(0, 1, 0),
		CreatedAt:  from,
	}
}

func epochColumnNames() []string {
	return []string{"version", "wrapped_key", "active_from", "active_to", "created_at"}
}

func epochRow(e *domain.KeyEpoch) *pgxmock.Rows {
	return pgxmock.NewRows(epochColumnNames()).
		AddRow(e.Version, e.WrappedKey, e.ActiveFrom, e.ActiveTo, e.CreatedAt)
}

func TestKeyEpochRepo_GetLatest(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	e := newTestEpoch("a1b2c3", testTime())

	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY active_from DESC").
		WillReturnRows(epochRow(e))

	got, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_GetLatest_None(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM key_epochs").
		WillReturnRows(pgxmock.NewRows(epochColumnNames()))

	got, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKeyEpochRepo_GetByVersion(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	e := newTestEpoch("a1b2c3", testTime())

	mock.ExpectQuery("SELECT .+ FROM key_epochs WHERE version").
		WithArgs("a1b2c3").
		WillReturnRows(epochRow(e))

	got, err := repo.GetByVersion(context.Background(), "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_Inserts(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	now := testTime()
	e := newTestEpoch("a1b2c3", now)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(keyEpochLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY").
		WillReturnRows(pgxmock.NewRows(epochColumnNames()))
	mock.ExpectExec("INSERT INTO key_epochs").
		WithArgs(e.Version, e.WrappedKey, e.ActiveFrom, e.ActiveTo, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	winner, created, err := repo.CreateIfNoneActive(context.Background(), e, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Same(t, e, winner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_ReplacesExpired(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	now := testTime()
	old := newTestEpoch("000001", now.AddDate(0, -2, 0))
	e := newTestEpoch("a1b2c3", now)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(keyEpochLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY").
		WillReturnRows(epochRow(old))
	mock.ExpectExec("INSERT INTO key_epochs").
		WithArgs(e.Version, e.WrappedKey, e.ActiveFrom, e.ActiveTo, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, created, err := repo.CreateIfNoneActive(context.Background(), e, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_LoserGetsWinner(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	now := testTime()
	winner := newTestEpoch("ffeedd", now.Add(-time.Second))
	mine := newTestEpoch("a1b2c3", now)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(keyEpochLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY").
		WillReturnRows(epochRow(winner))
	mock.ExpectRollback()

	got, created, err := repo.CreateIfNoneActive(context.Background(), mine, now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "ffeedd", got.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_InsertFails(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	now := testTime()
	e := newTestEpoch("a1b2c3", now)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(keyEpochLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY").
		WillReturnRows(pgxmock.NewRows(epochColumnNames()))
	mock.ExpectExec("INSERT INTO key_epochs").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, created, err := repo.CreateIfNoneActive(context.Background(), e, now)
	require.Error(t, err)
	assert.False(t, created)
	assert.Contains(t, err.Error(), "insert key epoch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_VersionTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)
	now := testTime()
	e := newTestEpoch("a1b2c3", now)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(keyEpochLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT .+ FROM key_epochs ORDER BY").
		WillReturnRows(pgxmock.NewRows(epochColumnNames()))
	mock.ExpectExec("INSERT INTO key_epochs").WillReturnError(uniqueErr)
	mock.ExpectRollback()

	_, created, err := repo.CreateIfNoneActive(context.Background(), e, now)
	assert.False(t, created)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_004", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyEpochRepo_CreateIfNoneActive_BeginFails(t *testing.T) {
	mock := newMock(t)
	repo := NewKeyEpochRepo(mock)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, _, err := repo.CreateIfNoneActive(context.Background(), newTestEpoch("a1b2c3", testTime()), testTime())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin key epoch tx")
}
