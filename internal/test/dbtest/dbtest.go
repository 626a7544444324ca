// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbtest is an internal helper for the test packages.
// It creates temporary SQLite databases, so the migration steps and
// repositories can be tested without a DBMS server.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/stretchr/testify/require"
)

// New opens a SQLite database in a temporary directory of t which is
// closed and removed when t finishes.
func New(t *testing.T, opts ...database.Option) *database.Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.OpenSQLite(context.Background(), path, opts...)
	require.NoError(t, err, "cannot open the test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "cannot close the test database")
	})
	return db
}

// Exec runs stmts on db, failing t on the first error.
func Exec(t *testing.T, db *database.Database, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.DB.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

// Count returns the result of a `select count(*)` like query.
func Count(t *testing.T, db *database.Database, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.QueryRow(db.Rebind(query), args...).Scan(&n), query)
	return n
}
