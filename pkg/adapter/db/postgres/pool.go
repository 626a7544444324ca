// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres opens the PostgreSQL connections pool. The pool is
// managed by GORM which logs the slow and failed statements, while
// migration steps receive a database.Database over the same pool.
// The Conn and Tx types implement the repo.Conn and repo.Tx interfaces
// for the repositories of this package, such as the schema history.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/log"
	"github.com/momeni/dbmigrate/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSlowThreshold is the duration after which a statement is
// logged as a slow one.
const DefaultSlowThreshold = 200 * time.Millisecond

// Pool is a PostgreSQL connections pool.
type Pool struct {
	*gorm.DB
}

type poolOptions struct {
	slowThreshold time.Duration
	logLevel      logger.LogLevel
}

// PoolOption customizes the NewPool function.
type PoolOption func(o *poolOptions) error

// WithSlowThreshold overrides the DefaultSlowThreshold.
func WithSlowThreshold(d time.Duration) PoolOption {
	return func(o *poolOptions) error {
		if d <= 0 {
			return fmt.Errorf("slow threshold must be positive, got %v", d)
		}
		o.slowThreshold = d
		return nil
	}
}

// WithStatementsLog logs all statements, and not only the slow or
// failed ones.
func WithStatementsLog() PoolOption {
	return func(o *poolOptions) error {
		o.logLevel = logger.Info
		return nil
	}
}

// NewPool connects to the url PostgreSQL database and tests the
// connection before returning the pool.
func NewPool(ctx context.Context, url string, opts ...PoolOption) (
	*Pool, error,
) {
	o := &poolOptions{
		slowThreshold: DefaultSlowThreshold,
		logLevel:      logger.Warn,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(slogWriter{}, logger.Config{
			SlowThreshold:             o.slowThreshold,
			LogLevel:                  o.logLevel,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
			// Set to false in order to log with replaced vars
			ParameterizedQueries: true,
		}),
	})
	pool := &Pool{DB: gdb}
	err = pool.Conn(ctx, NoOpConnHandler)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

// slogWriter passes the GORM log lines to the default slog logger.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	log.Warn(
		context.Background(), "sql statement",
		slog.String("detail", fmt.Sprintf(format, args...)),
	)
}

type ConnHandler = repo.ConnHandler

// NoOpConnHandler does nothing, so it may be used for testing the
// connectivity of a pool.
func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn takes a connection from the pool and passes it to f.
func (p *Pool) Conn(ctx context.Context, f ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		cc := &Conn{DB: c}
		return f(ctx, cc)
	})
}

// Database wraps the pool as a database.Database for the migration
// steps. The returned Database shares the connections of p, so closing
// it closes p too.
func (p *Pool) Database(opts ...database.Option) (*database.Database, error) {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm.DB.DB: %w", err)
	}
	opts = append([]database.Option{
		database.WithDialect(dialect.MustNew(dialect.PostgreSQL)),
	}, opts...)
	return database.New(sqlDB, "pgx", opts...)
}

// Close closes all connections of the pool.
func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
