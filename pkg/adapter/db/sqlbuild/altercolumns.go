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

// AlterColumns renders the statements which change the type and the
// nullability of existing columns. Default values are not altered.
type AlterColumns struct {
	builder
	columns []def.Column
}

// NewAlterColumns creates an AlterColumns builder for the table.
func NewAlterColumns(d dialect.Dialect, table string) *AlterColumns {
	ac := &AlterColumns{builder: newBuilder(d, table)}
	if ac.dialectID() == dialect.SQLite {
		ac.fail(cerr.Validationf("SQLite does not support altering columns"))
	}
	return ac
}

// UpdateColumn sets the new definition of the c column.
func (ac *AlterColumns) UpdateColumn(c def.Column) *AlterColumns {
	ac.fail(c.Validate())
	ac.columns = append(ac.columns, c)
	return ac
}

// Build renders the statements.
func (ac *AlterColumns) Build() ([]string, error) {
	ac.requireColumns(len(ac.columns))
	if ac.err != nil {
		return nil, ac.err
	}
	prefix := "ALTER TABLE " + ac.table + " "
	switch ac.dialectID() {
	case dialect.PostgreSQL:
		parts := make([]string, 0, 2*len(ac.columns))
		for _, c := range ac.columns {
			t, err := c.SQLType(ac.d)
			if err != nil {
				return nil, err
			}
			null := "DROP NOT NULL"
			if !c.IsNullable() {
				null = "SET NOT NULL"
			}
			parts = append(parts,
				"ALTER COLUMN "+c.Name()+" TYPE "+t,
				"ALTER COLUMN "+c.Name()+" "+null,
			)
		}
		return []string{prefix + strings.Join(parts, ", ")}, nil
	case dialect.Oracle:
		defs, err := ac.typeAndNullability()
		if err != nil {
			return nil, err
		}
		return []string{
			prefix + "MODIFY (" + strings.Join(defs, ", ") + ")",
		}, nil
	default:
		defs, err := ac.typeAndNullability()
		if err != nil {
			return nil, err
		}
		stmts := make([]string, 0, len(defs))
		for _, d := range defs {
			stmts = append(stmts, prefix+"ALTER COLUMN "+d)
		}
		return stmts, nil
	}
}

// typeAndNullability renders `name TYPE [NOT] NULL` per column.
func (ac *AlterColumns) typeAndNullability() ([]string, error) {
	defs := make([]string, 0, len(ac.columns))
	for _, c := range ac.columns {
		t, err := c.SQLType(ac.d)
		if err != nil {
			return nil, err
		}
		null := " NULL"
		if !c.IsNullable() {
			null = " NOT NULL"
		}
		defs = append(defs, c.Name()+" "+t+null)
	}
	return defs, nil
}
