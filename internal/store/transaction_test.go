package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE users SET disabled = true")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns function error", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		want := errors.New("boom")
		err = store.RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports rollback failure alongside original error", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		rbErr := errors.New("connection reset")
		mock.ExpectRollback().WillReturnError(rbErr)

		want := errors.New("boom")
		err = store.RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.ErrorIs(t, err, rbErr)
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin().WillReturnError(errors.New("no connections"))

		called := false
		err = store.RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = store.RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
				panic("kaboom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrTaskNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrUserNotFound))
	assert.True(t, store.IsNotFoundError(store.NewStoreError("task", "update", "no row", store.ErrTaskNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrUserExists))
	assert.True(t, store.IsDuplicateError(store.ErrUserExists))
	assert.False(t, store.IsDuplicateError(nil))

	se := store.NewStoreError("user", "create", "insert failed", store.ErrUserExists)
	assert.Equal(t, "create operation on user failed: insert failed: entity already exists: username or email", se.Error())
}
