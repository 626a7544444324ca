// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dialect_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, id := range dialect.IDs() {
		d, err := dialect.New(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, d.ID())
	}
	d, err := dialect.New("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, sqlx.DOLLAR, d.BindType())

	_, err = dialect.New("db2")
	require.ErrorIs(t, err, cerr.ErrConfiguration)
	assert.Panics(t, func() { dialect.MustNew("db2") })
}

func TestForDriver(t *testing.T) {
	cases := map[string]string{
		"pgx":       dialect.PostgreSQL,
		"postgres":  dialect.PostgreSQL,
		"sqlite":    dialect.SQLite,
		"sqlserver": dialect.MsSQL,
		"godror":    dialect.Oracle,
	}
	for driver, id := range cases {
		d, err := dialect.ForDriver(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, id, d.ID(), driver)
	}
	_, err := dialect.ForDriver("mysql")
	assert.ErrorIs(t, err, cerr.ErrConfiguration)
}

func TestBooleanLiterals(t *testing.T) {
	assert.Equal(t, "1", dialect.MustNew(dialect.MsSQL).TrueSQL())
	assert.Equal(t, "0", dialect.MustNew(dialect.Oracle).FalseSQL())
	assert.Equal(t, "true", dialect.MustNew(dialect.H2).TrueSQL())
	assert.Equal(t, "false", dialect.MustNew(dialect.SQLite).FalseSQL())
}

func TestSupportsDropIndexIfExists(t *testing.T) {
	assert.True(t, dialect.SupportsDropIndexIfExists(
		dialect.MustNew(dialect.PostgreSQL),
	))
	assert.False(t, dialect.SupportsDropIndexIfExists(
		dialect.MustNew(dialect.MsSQL),
	))
	assert.False(t, dialect.SupportsDropIndexIfExists(
		dialect.MustNew(dialect.Oracle),
	))
}
