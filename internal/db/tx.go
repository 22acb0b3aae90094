package db

import (
	"context"

	"github.com/acoustichub/crm/internal/db/sqlc"
)

// TxRunner exposes DB.WithTx to services that depend on a narrower store
// interface than *sqlc.Queries. bind converts the transaction-scoped query set
// into that interface.
type TxRunner[S any] struct {
	db   *DB
	bind func(*sqlc.Queries) S
}

func NewTxRunner[S any](d *DB, bind func(*sqlc.Queries) S) *TxRunner[S] {
	return &TxRunner[S]{db: d, bind: bind}
}

func (r *TxRunner[S]) WithTx(ctx context.Context, fn func(S) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(r.bind(q))
	})
}
