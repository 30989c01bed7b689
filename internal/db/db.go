// Package db holds the Postgres query layer. Queries are written in the
// sqlc shape: one method per statement on *Queries, with a Querier interface
// for consumers that only need a subset.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New wraps a connection or pool.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries executes statements against the wrapped DBTX.
type Queries struct {
	db DBTX
}

// WithTx returns a copy bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// numeric parameters are sent as text so Postgres does the conversion.
func numericArg(d decimal.Decimal) string {
	return d.String()
}

func nullNumericArg(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ExecTx runs fn inside a transaction on conn. The transaction commits when
// fn returns nil and rolls back otherwise.
func ExecTx(ctx context.Context, conn TxBeginner, fn func(*Queries) error) error {
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}
