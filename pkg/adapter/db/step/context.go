// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package step provides the building blocks of the migration steps.
//
// A step opens a Context over a database.Database. The Context holds
// one connection for reading, which runs each SELECT in its own
// implicit transaction, and one connection for writing, which begins a
// transaction lazily and keeps it open until Commit is called. Result
// sets may be scrolled on the reading connection while their rows are
// rewritten on the writing connection. Hence, the pool must allow at
// least two open connections. The reading connection serves one
// result set at a time, so a Select may not run while another one of
// the same Context is being scrolled.
//
// Statements use positional `?` placeholders which are rebound to the
// dialect placeholders before execution. Parameters are bound with the
// chainable SetXxx methods using 1-based positions, similar to the
// Row getters.
//
// DdlChange and DataChange adapt a SchemaMigration or a DataMigration
// to the repo.Step interface, opening a Context for each execution and
// closing it on every exit path.
package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Context is the scoped set of connections of one step execution.
// It is not safe for concurrent use.
type Context struct {
	db    *database.Database
	read  *sqlx.Conn
	write *sqlx.Conn
	tx    *sqlx.Tx

	scrolling bool // a result set is open on read
}

// Open takes the reading and writing connections of a new Context
// from db. The Context must be closed by its Close method.
// A pool which is limited to a single connection is rejected, since
// waiting for the second connection would never end.
func Open(ctx context.Context, db *database.Database) (*Context, error) {
	if db.DB.Stats().MaxOpenConnections == 1 {
		return nil, cerr.Configurationf(
			"a step needs two connections, but the pool is limited to one",
		)
	}
	read, err := db.DB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening read connection: %w", err)
	}
	write, err := db.DB.Connx(ctx)
	if err != nil {
		_ = read.Close()
		return nil, fmt.Errorf("opening write connection: %w", err)
	}
	return &Context{db: db, read: read, write: write}, nil
}

// Database returns the database which c was opened for.
func (c *Context) Database() *database.Database {
	return c.db
}

// Dialect returns the dialect of the c database.
func (c *Context) Dialect() dialect.Dialect {
	return c.db.Dialect
}

// BatchSize returns the default batch size of the c database.
func (c *Context) BatchSize() int {
	if c.db.BatchSize <= 0 {
		return database.DefaultBatchSize
	}
	return c.db.BatchSize
}

// PrepareSelect creates a Select statement for sql.
func (c *Context) PrepareSelect(sql string) *Select {
	return newSelect(c, sql)
}

// PrepareUpsert creates an Upsert statement for the sql INSERT, UPDATE,
// or DELETE statement. Its changes are visible to other connections
// only after being committed.
func (c *Context) PrepareUpsert(sql string) *Upsert {
	return newUpsert(c, sql)
}

// PrepareMassUpdate creates an empty MassUpdate whose SELECT and
// UPDATE statements must be set before its execution.
func (c *Context) PrepareMassUpdate() *MassUpdate {
	return &MassUpdate{c: c, batchSize: c.BatchSize()}
}

// writeTx returns the ongoing write transaction, beginning it if
// there is none.
func (c *Context) writeTx(ctx context.Context) (*sqlx.Tx, error) {
	if c.write == nil {
		return nil, errors.New("context is closed")
	}
	if c.tx == nil {
		tx, err := c.write.BeginTxx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin tx: %w", err)
		}
		c.tx = tx
	}
	return c.tx, nil
}

// Commit commits the ongoing write transaction, if any.
func (c *Context) Commit() error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the uncommitted changes of the write transaction.
// Committed batches are kept.
func (c *Context) Rollback() error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// Close rolls back the uncommitted changes and releases both of the
// connections. It is safe to call Close more than once.
func (c *Context) Close() error {
	errs := []error{c.Rollback()}
	if c.write != nil {
		errs = append(errs, c.write.Close())
		c.write = nil
	}
	if c.read != nil {
		errs = append(errs, c.read.Close())
		c.read = nil
	}
	return errors.Join(errs...)
}

// TableExists reports whether the table exists in the current schema.
func (c *Context) TableExists(ctx context.Context, table string) (bool, error) {
	return c.exists(ctx, c.Dialect().TableExistsSQL(), table)
}

// ColumnExists reports whether the column of the table exists.
func (c *Context) ColumnExists(
	ctx context.Context, table, column string,
) (bool, error) {
	return c.exists(ctx, c.Dialect().ColumnExistsSQL(), table, column)
}

// IndexExists reports whether the index of the table exists.
func (c *Context) IndexExists(
	ctx context.Context, table, index string,
) (bool, error) {
	return c.exists(ctx, c.Dialect().IndexExistsSQL(), table, index)
}

func (c *Context) exists(
	ctx context.Context, sql string, args ...any,
) (bool, error) {
	if err := c.readable(); err != nil {
		return false, err
	}
	var n int64
	err := c.read.QueryRowxContext(ctx, c.db.Rebind(sql), args...).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probing catalog: %w", err)
	}
	return n > 0, nil
}

// readable reports why a new query may not run on the read connection.
func (c *Context) readable() error {
	if c.read == nil {
		return errors.New("context is closed")
	}
	if c.scrolling {
		return cerr.Configurationf(
			"the read connection is busy with a scrolled result set",
		)
	}
	return nil
}
