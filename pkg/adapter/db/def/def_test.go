// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package def_test

import (
	"testing"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLTypes(t *testing.T) {
	columns := []def.Column{
		def.Varchar("a", 40),
		def.Integer("a"),
		def.BigInt("a"),
		def.Boolean("a"),
		def.Blob("a"),
		def.Clob("a"),
		def.Decimal("a", 0, 0),
		def.TinyInt("a"),
		def.Timestamp("a"),
	}
	expected := map[string][]string{
		dialect.H2: {
			"VARCHAR (40)", "INTEGER", "BIGINT", "BOOLEAN", "BLOB",
			"CLOB", "NUMERIC (38,20)", "TINYINT", "TIMESTAMP",
		},
		dialect.MsSQL: {
			"NVARCHAR (40)", "INT", "BIGINT", "BIT", "VARBINARY(MAX)",
			"NVARCHAR (MAX)", "DECIMAL (38,20)", "TINYINT", "DATETIME",
		},
		dialect.Oracle: {
			"VARCHAR2 (40 CHAR)", "NUMBER(38,0)", "NUMBER (38)",
			"NUMBER(1)", "BLOB", "CLOB", "NUMBER(38,20)", "NUMBER(3)",
			"TIMESTAMP (6)",
		},
		dialect.PostgreSQL: {
			"VARCHAR (40)", "INTEGER", "BIGINT", "BOOLEAN", "BYTEA",
			"TEXT", "NUMERIC (38,20)", "SMALLINT", "TIMESTAMP",
		},
		dialect.SQLite: {
			"VARCHAR (40)", "INTEGER", "BIGINT", "BOOLEAN", "BLOB",
			"TEXT", "NUMERIC (38,20)", "SMALLINT", "TIMESTAMP",
		},
	}
	for id, types := range expected {
		d := dialect.MustNew(id)
		for i, c := range columns {
			typ, err := c.SQLType(d)
			require.NoError(t, err)
			assert.Equal(t, types[i], typ, "%s %s", id, c.Type())
		}
	}
}

func TestIgnoreOracleUnit(t *testing.T) {
	typ, err := def.Varchar("a", 10, def.IgnoreOracleUnit()).
		SQLType(dialect.MustNew(dialect.Oracle))
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR2 (10)", typ)
}

func TestDefinition(t *testing.T) {
	pg := dialect.MustNew(dialect.PostgreSQL)
	s, err := def.Varchar("name", 100, def.NotNull(),
		def.Default("it's"),
	).Definition(pg)
	require.NoError(t, err)
	assert.Equal(t, "name VARCHAR (100) DEFAULT 'it''s' NOT NULL", s)

	s, err = def.Integer("counter", def.Default(0)).Definition(pg)
	require.NoError(t, err)
	assert.Equal(t, "counter INTEGER DEFAULT 0 NULL", s)

	s, err = def.Boolean("flag", def.NotNull(), def.Nullable(true)).
		Definition(pg)
	require.NoError(t, err)
	assert.Equal(t, "flag BOOLEAN NULL", s)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		c   def.Column
		err error
	}{
		{def.Varchar("a", 0), cerr.ErrValidation},
		{def.Varchar("", 10), cerr.ErrMissingField},
		{def.Decimal("a", 5, 6), cerr.ErrValidation},
		{def.Boolean("a", def.Default("yes")), cerr.ErrValidation},
		{def.Varchar("a", 3, def.Default(true)), cerr.ErrValidation},
		{def.BigInt("Bad"), cerr.ErrValidation},
	}
	for _, tc := range cases {
		err := tc.c.Validate()
		assert.ErrorIs(t, err, tc.err, tc.c.Name())
		assert.ErrorIs(t, err, cerr.ErrConfiguration, tc.c.Name())
	}
	assert.NoError(t, def.Decimal("a", 10, 2).Validate())
	assert.NoError(t, def.Clob("a", def.Default("")).Validate())
	assert.NoError(t, def.BigInt("a", def.Default(int64(7))).Validate())
}

func TestValidateIdentifiers(t *testing.T) {
	assert.EqualError(t, def.ValidateIndexName("a-b"),
		"Index name must be lower case and contain only alphanumeric"+
			" chars or '_', got 'a-b'",
	)
	assert.EqualError(t, def.ValidateColumnName(
		"abcdefghijklmnopqrstuvwxyz01234",
	), "Column name length can't be more than 30")
	assert.NoError(t, def.ValidateColumnName("created_at"))
}
