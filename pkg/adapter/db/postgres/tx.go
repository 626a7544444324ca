// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/core/repo"
	"gorm.io/gorm"
)

// Tx represents a database transaction. It is unsafe to be used
// concurrently. By default, a READ-COMMITTED transaction is expected
// from a PostgreSQL server.
type Tx struct {
	*gorm.DB
}

// Exec runs sql with args and returns the number of affected rows.
// Parameters in sql may be numbered like $1 or given as ? which is
// supported by GORM too.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(tx.DB.WithContext(ctx), sql, args...)
}

// Query runs sql with args and returns its result set. Query or Exec
// may not be called again until the Rows is closed.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(tx.DB.WithContext(ctx), sql, args...)
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

func exec(db *gorm.DB, sql string, args ...any) (int64, error) {
	tt := db.Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

func query(db *gorm.DB, sql string, args ...any) (repo.Rows, error) {
	rows, err := db.Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return database.RowsAdapter{Rows: rows}, nil
}
