// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlbuild

import (
	"strings"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// AddColumns renders the ALTER TABLE statements which add columns to
// an existing table.
type AddColumns struct {
	builder
	columns []def.Column
}

// NewAddColumns creates an AddColumns builder for the table.
func NewAddColumns(d dialect.Dialect, table string) *AddColumns {
	return &AddColumns{builder: newBuilder(d, table)}
}

// AddColumn appends c to the added columns.
func (ac *AddColumns) AddColumn(c def.Column) *AddColumns {
	ac.fail(c.Validate())
	ac.columns = append(ac.columns, c)
	return ac
}

// Build renders the statements. SQLite accepts one column per
// statement, so one statement is rendered per column. Other dialects
// receive a single statement.
func (ac *AddColumns) Build() ([]string, error) {
	ac.requireColumns(len(ac.columns))
	if ac.err != nil {
		return nil, ac.err
	}
	defs, err := ac.definitions(ac.columns)
	if err != nil {
		return nil, err
	}
	prefix := "ALTER TABLE " + ac.table + " "
	switch ac.dialectID() {
	case dialect.PostgreSQL:
		return []string{
			prefix + "ADD COLUMN " + strings.Join(defs, ", ADD COLUMN "),
		}, nil
	case dialect.MsSQL:
		return []string{prefix + "ADD " + strings.Join(defs, ", ")}, nil
	case dialect.Oracle, dialect.H2:
		return []string{
			prefix + "ADD (" + strings.Join(defs, ", ") + ")",
		}, nil
	case dialect.SQLite:
		stmts := make([]string, 0, len(defs))
		for _, d := range defs {
			stmts = append(stmts, prefix+"ADD COLUMN "+d)
		}
		return stmts, nil
	default:
		return nil, cerr.Configurationf(
			"unsupported dialect: %s", ac.dialectID(),
		)
	}
}
