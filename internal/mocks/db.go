package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskhub-api/internal/store"
)

// MockDB implements store.TxBeginner for testing transaction failures.
type MockDB struct {
	BeginTxFn func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)

	// Err is returned by BeginTx when BeginTxFn is nil.
	Err error
}

// BeginTx implements store.TxBeginner.
func (m *MockDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if m.BeginTxFn != nil {
		return m.BeginTxFn(ctx, opts)
	}
	return nil, m.Err
}

var _ store.TxBeginner = (*MockDB)(nil)
