package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestWithSerializableTxCommits(t *testing.T) {
	dbx, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	var ran bool
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxRollsBackOnError(t *testing.T) {
	dbx, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		return boom
	})

	assert.Equal(t, boom, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxRetriesSerializationFailure(t *testing.T) {
	dbx, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		attempts++
		if attempts == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxRetriesWrappedSerializationFailure(t *testing.T) {
	dbx, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	// services wrap repo errors in typed errors before they reach the
	// retry loop; the driver code must still be visible through the chain
	attempts := 0
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		attempts++
		if attempts == 1 {
			return perrors.NewErrInternalServerError("Failed to move task",
				fmt.Errorf("failed to shift tasks left: %w", &pq.Error{Code: "40001"}))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxGivesUpAfterMaxAttempts(t *testing.T) {
	dbx, mock := newMockDB(t)

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	attempts := 0
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})

	require.Error(t, err)
	assert.Equal(t, maxTxAttempts, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxDoesNotRetryPlainErrors(t *testing.T) {
	dbx, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	attempts := 0
	err := WithSerializableTx(context.Background(), dbx, func(tx *sqlx.Tx) error {
		attempts++
		return &pq.Error{Code: "23505"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
