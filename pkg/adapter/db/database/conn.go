// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// Conn takes a connection from the pool and passes it to f, so
// Database implements the repo.Pool interface.
func (db *Database) Conn(ctx context.Context, f repo.ConnHandler) error {
	c, err := db.DB.Connx(ctx)
	if err != nil {
		return fmt.Errorf("db.Connx: %w", err)
	}
	defer c.Close()
	return f(ctx, &Conn{c: c, db: db})
}

// Conn is a single connection of a Database.
type Conn struct {
	c  *sqlx.Conn
	db *Database
}

// Tx begins a transaction and passes it to f. The transaction is
// committed if f returns nil, and rolled back if f fails or panics.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	tx, err := c.c.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
			if err2 := tx.Rollback(); err2 != nil {
				err = fmt.Errorf("%w, rollback: %w", err, err2)
			}
			return
		}
		if err != nil {
			if err2 := tx.Rollback(); err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, &Tx{tx: tx, db: c.db})
}

// Exec runs sql in its own implicit transaction.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(ctx, c.c, c.db.Rebind(sql), args...)
}

// Query runs sql and returns its result set.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(ctx, c.c, c.db.Rebind(sql), args...)
}

func (c *Conn) IsConn() {
}

// Tx is a transaction of a Conn.
type Tx struct {
	tx *sqlx.Tx
	db *Database
}

// Exec runs sql in the transaction.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(ctx, tx.tx, tx.db.Rebind(sql), args...)
}

// Query runs sql in the transaction and returns its result set.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(ctx, tx.tx, tx.db.Rebind(sql), args...)
}

func (tx *Tx) IsTx() {
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func exec(ctx context.Context, q execQueryer, sql string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot count the rows of DDL statements
		return 0, nil
	}
	return n, nil
}

func query(ctx context.Context, q execQueryer, sql string, args ...any) (repo.Rows, error) {
	rows, err := q.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return RowsAdapter{Rows: rows}, nil
}

// RowsAdapter adapts *sql.Rows to the repo.Rows interface.
type RowsAdapter struct {
	*sql.Rows
}

// Close closes the result set. Its error may be checked by calling the
// Err method.
func (ra RowsAdapter) Close() {
	_ = ra.Rows.Close()
}

// Values scans the current row into a slice, one item per column.
func (ra RowsAdapter) Values() ([]any, error) {
	names, err := ra.Columns()
	if err != nil {
		return nil, fmt.Errorf("column-names: %w", err)
	}
	vals := make([]any, len(names))
	valPtrs := make([]any, 0, len(names))
	for i := range vals {
		valPtrs = append(valPtrs, &vals[i])
	}
	err = ra.Scan(valPtrs...)
	return vals, err
}

var (
	_ repo.Pool = (*Database)(nil)
	_ repo.Conn = (*Conn)(nil)
	_ repo.Tx   = (*Tx)(nil)
)
