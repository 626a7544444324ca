// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momeni/dbmigrate/internal/test/dbtest"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
)

const literalsQuery = "select '?', 'it''s ?' from t where a = ? and b <> '' and c = ?"

func TestRebindSkipsQuotedLiterals(t *testing.T) {
	cases := map[string]string{
		dialect.PostgreSQL: "select '?', 'it''s ?' from t where a = $1 and b <> '' and c = $2",
		dialect.MsSQL:      "select '?', 'it''s ?' from t where a = @p1 and b <> '' and c = @p2",
		dialect.Oracle:     "select '?', 'it''s ?' from t where a = :arg1 and b <> '' and c = :arg2",
		dialect.SQLite:     literalsQuery,
	}
	for id, expected := range cases {
		db := dbtest.New(t, database.WithDialect(dialect.MustNew(id)))
		assert.Equal(t, expected, db.Rebind(literalsQuery), id)
	}
}

func TestCountPlaceholders(t *testing.T) {
	assert.Equal(t, 2, database.CountPlaceholders(literalsQuery))
	assert.Equal(t, 0, database.CountPlaceholders("select 1"))
	assert.Equal(t, 3, database.CountPlaceholders("insert into t values (?, ?, ?)"))
}
