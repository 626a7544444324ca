// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package database provides the Database handle which is shared by the
// migration steps. It combines a sqlx connections pool with the dialect
// of its DBMS and the default batch size of the mass operations.
// PostgreSQL databases are opened by the postgres package, while the
// SQLite databases (mainly used by tests and local runs) are opened
// by the OpenSQLite function of this package.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// DefaultBatchSize is the number of rows which are flushed and
// committed together by the mass operations if no other size is set.
const DefaultBatchSize = 250

// Database is a connections pool along with its dialect.
// It is safe for concurrent use, but each step opens its own
// connections from it.
type Database struct {
	DB        *sqlx.DB
	Dialect   dialect.Dialect
	BatchSize int

	closers []func() error
}

// Option customizes a Database in the New function.
type Option func(db *Database) error

// WithBatchSize overrides the DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(db *Database) error {
		if n <= 0 {
			return cerr.Validationf("batch size must be positive, got %d", n)
		}
		db.BatchSize = n
		return nil
	}
}

// WithDialect overrides the dialect which is detected from the driver.
func WithDialect(d dialect.Dialect) Option {
	return func(db *Database) error {
		if d == nil {
			return cerr.MissingFieldf("dialect can't be null")
		}
		db.Dialect = d
		return nil
	}
}

// WithCloser registers f to be called when the Database is closed,
// after its connections pool. It lets the opener release the resources
// which own the pool, such as a GORM session.
func WithCloser(f func() error) Option {
	return func(db *Database) error {
		db.closers = append(db.closers, f)
		return nil
	}
}

// New wraps the sqlDB pool which was opened for the driverName driver.
// The dialect is taken from the driverName unless WithDialect is given.
// The Database takes the ownership of sqlDB, so it will be closed by
// the Close method.
func New(sqlDB *sql.DB, driverName string, opts ...Option) (*Database, error) {
	if sqlDB == nil {
		return nil, cerr.MissingFieldf("sql.DB can't be null")
	}
	db := &Database{
		DB:        sqlx.NewDb(sqlDB, driverName),
		BatchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, err
		}
	}
	if db.Dialect == nil {
		d, err := dialect.ForDriver(driverName)
		if err != nil {
			return nil, err
		}
		db.Dialect = d
	}
	return db, nil
}

// OpenSQLite opens the SQLite database file at path, creating it if
// it is missing. The WAL journal mode lets the rows of a table be read
// by one connection while another connection updates them.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (
	*Database, error,
) {
	if path == "" || path == ":memory:" {
		return nil, cerr.Validationf(
			"sqlite database must be a file, got %q", path,
		)
	}
	dsn := path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one reading and one writing connection per step, plus history
	sqlDB.SetMaxOpenConns(4)
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	db, err := New(sqlDB, "sqlite", opts...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Rebind converts the `?` placeholders of query to the bind type of
// the database dialect. A `?` inside a quoted literal is kept as is.
func (db *Database) Rebind(query string) string {
	bt := db.Dialect.BindType()
	if bt == sqlx.QUESTION {
		return query
	}
	masked := []byte(query)
	quoted := false
	eachPlaceholder(query, func(i int, q bool) {
		if q {
			masked[i] = 0
			quoted = true
		}
	})
	out := sqlx.Rebind(bt, string(masked))
	if quoted {
		out = strings.ReplaceAll(out, "\x00", "?")
	}
	return out
}

// CountPlaceholders counts the `?` placeholders of query, skipping
// those in quoted literals like Rebind does.
func CountPlaceholders(query string) int {
	n := 0
	eachPlaceholder(query, func(_ int, quoted bool) {
		if !quoted {
			n++
		}
	})
	return n
}

// eachPlaceholder calls f with the index of each `?` of query and
// whether it is inside a single-quoted literal. A doubled quote
// escapes a quote, so toggling twice keeps the literal open.
func eachPlaceholder(query string, f func(i int, quoted bool)) {
	quoted := false
	for i := 0; i < len(query); i++ {
		switch query[i] {
		case '\'':
			quoted = !quoted
		case '?':
			f(i, quoted)
		}
	}
}

// Close closes the connections pool and runs the registered closers.
func (db *Database) Close() error {
	errs := []error{db.DB.Close()}
	for _, f := range db.closers {
		errs = append(errs, f())
	}
	return errors.Join(errs...)
}
