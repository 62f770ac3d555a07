package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. The concrete type is infra-defined
// (pgx.Tx for Postgres). Repositories must gracefully accept a nil Tx and run
// against the pool directly.
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via tx. Keeps use-case interfaces
// free of driver types while still allowing multi-statement atomic writes.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
