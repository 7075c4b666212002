package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor on top of the pgx pool. Every
// multi-write section of the ledger runs inside one of its transactions:
// user+wallet provisioning, the webhook status flip plus credit, and the
// transfer path, which takes its sender row lock on the tx connection.
type Transactor struct {
	pool Pool
}

// NewTransactor wraps the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction on a pooled connection.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
