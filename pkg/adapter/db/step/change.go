// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// SchemaMigration is the body of a DDL step.
type SchemaMigration interface {
	Apply(ctx context.Context, c *DdlContext) error
}

// SchemaMigrationFunc adapts a function to the SchemaMigration
// interface.
type SchemaMigrationFunc func(ctx context.Context, c *DdlContext) error

// Apply calls f(ctx, c).
func (f SchemaMigrationFunc) Apply(ctx context.Context, c *DdlContext) error {
	return f(ctx, c)
}

// DataMigration is the body of a data step.
type DataMigration interface {
	Apply(ctx context.Context, c *Context) error
}

// DataMigrationFunc adapts a function to the DataMigration interface.
type DataMigrationFunc func(ctx context.Context, c *Context) error

// Apply calls f(ctx, c).
func (f DataMigrationFunc) Apply(ctx context.Context, c *Context) error {
	return f(ctx, c)
}

// Builder renders DDL statements, e.g., the sqlbuild builders.
type Builder interface {
	Build() ([]string, error)
}

// DdlContext is the Context of a DDL step.
type DdlContext struct {
	*Context
}

// Execute runs stmts one by one on the writing connection. The pending
// changes of the write transaction are committed beforehand, since
// most dialects commit implicitly before a DDL statement.
func (c *DdlContext) Execute(ctx context.Context, stmts ...string) error {
	if err := c.Commit(); err != nil {
		return err
	}
	if c.write == nil {
		return errors.New("context is closed")
	}
	for _, stmt := range stmts {
		if _, err := c.write.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}

// Apply builds the statements of each builder and executes them.
func (c *DdlContext) Apply(ctx context.Context, builders ...Builder) error {
	for _, b := range builders {
		stmts, err := b.Build()
		if err != nil {
			return fmt.Errorf("building statements: %w", err)
		}
		if err = c.Execute(ctx, stmts...); err != nil {
			return err
		}
	}
	return nil
}

// DdlChange is a migration step which changes the database schema.
type DdlChange struct {
	db *database.Database
	m  SchemaMigration
}

// NewDdlChange creates a DdlChange step which applies m on db.
func NewDdlChange(db *database.Database, m SchemaMigration) *DdlChange {
	return &DdlChange{db: db, m: m}
}

// Execute opens a Context, applies the migration, and closes the
// Context regardless of the result.
func (d *DdlChange) Execute(ctx context.Context) error {
	return withContext(ctx, d.db, d.m, func(ctx context.Context, c *Context) error {
		return d.m.Apply(ctx, &DdlContext{Context: c})
	})
}

// DataChange is a migration step which rewrites the database rows.
type DataChange struct {
	db *database.Database
	m  DataMigration
}

// NewDataChange creates a DataChange step which applies m on db.
func NewDataChange(db *database.Database, m DataMigration) *DataChange {
	return &DataChange{db: db, m: m}
}

// Execute opens a Context and applies the migration. The uncommitted
// changes are committed if the migration succeeds, and rolled back
// otherwise. Batches which were committed by the migration itself are
// kept in both cases.
func (d *DataChange) Execute(ctx context.Context) error {
	return withContext(ctx, d.db, d.m, func(ctx context.Context, c *Context) error {
		if err := d.m.Apply(ctx, c); err != nil {
			return err
		}
		return c.Commit()
	})
}

func withContext(
	ctx context.Context,
	db *database.Database,
	m any,
	f func(ctx context.Context, c *Context) error,
) (err error) {
	if db == nil || m == nil {
		return cerr.MissingFieldf("database and migration can't be null")
	}
	c, err := Open(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := c.Close(); err2 != nil {
			err = errors.Join(err, fmt.Errorf("closing context: %w", err2))
		}
	}()
	return f(ctx, c)
}

var (
	_ repo.Step = (*DdlChange)(nil)
	_ repo.Step = (*DataChange)(nil)
)
