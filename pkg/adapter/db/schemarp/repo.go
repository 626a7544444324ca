// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.History
// interface, keeping the numbers of the applied migration steps in the
// schema_migrations table. Each applied step adds one row, so the
// watermark is the largest stored number.
package schemarp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/adapter/db/sqlbuild"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// TableName is the name of the migration history table.
const TableName = "schema_migrations"

// Repo represents the migration history repository.
type Repo struct {
	pool repo.Pool
	d    dialect.Dialect
}

// New instantiates a history Repo which stores its rows through pool
// using the d dialect for creating its table.
func New(pool repo.Pool, d dialect.Dialect) *Repo {
	return &Repo{pool: pool, d: d}
}

// Start creates the history table if it does not exist.
func (r *Repo) Start(ctx context.Context) error {
	return r.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		exists, err := tableExists(ctx, c, r.d)
		if err != nil || exists {
			return err
		}
		stmts, err := sqlbuild.NewCreateTable(r.d, TableName).
			AddColumn(def.Varchar("version", 255, def.NotNull())).
			Build()
		if err != nil {
			return fmt.Errorf("building %s table: %w", TableName, err)
		}
		for _, stmt := range stmts {
			if _, err = c.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("creating %s table: %w", TableName, err)
			}
		}
		return nil
	})
}

// LastMigrationNumber returns the largest applied migration number,
// or -1 if the history table is missing or empty.
func (r *Repo) LastMigrationNumber(ctx context.Context) (int64, error) {
	last := int64(-1)
	err := r.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		exists, err := tableExists(ctx, c, r.d)
		if err != nil || !exists {
			return err
		}
		versions, err := loadVersions(ctx, c)
		if err != nil {
			return err
		}
		for _, v := range versions {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing version %q: %w", v, err)
			}
			last = max(last, n)
		}
		return nil
	})
	return last, err
}

// Done records s as an applied step.
func (r *Repo) Done(ctx context.Context, s model.RegisteredStep) error {
	return r.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return insertVersion(ctx, c, strconv.FormatInt(s.Number, 10))
	})
}

var _ repo.History = (*Repo)(nil)
