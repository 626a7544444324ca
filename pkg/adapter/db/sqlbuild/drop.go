// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlbuild

import (
	"strconv"
	"strings"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
)

// DropTable renders the DROP TABLE statement. On Oracle, the sequence
// and trigger of an auto increment primary key are dropped first,
// ignoring their absence.
type DropTable struct {
	builder
}

// NewDropTable creates a DropTable builder.
func NewDropTable(d dialect.Dialect, table string) *DropTable {
	return &DropTable{builder: newBuilder(d, table)}
}

// Build renders the statements.
func (dt *DropTable) Build() ([]string, error) {
	if dt.err != nil {
		return nil, dt.err
	}
	drop := "DROP TABLE " + dt.table
	if dt.dialectID() != dialect.Oracle {
		return []string{drop}, nil
	}
	return []string{
		oracleDropIgnoring("TRIGGER "+dt.table+"_idt", -4080),
		oracleDropIgnoring("SEQUENCE "+dt.table+"_seq", -2289),
		drop,
	}, nil
}

func oracleDropIgnoring(object string, code int) string {
	return "BEGIN EXECUTE IMMEDIATE 'DROP " + object + "';" +
		" EXCEPTION WHEN OTHERS THEN IF SQLCODE != " + strconv.Itoa(code) +
		" THEN RAISE; END IF; END;"
}

// DropColumns renders the statements which drop columns of a table.
type DropColumns struct {
	builder
	columns []string
}

// NewDropColumns creates a DropColumns builder for the named columns.
func NewDropColumns(
	d dialect.Dialect, table string, columns ...string,
) *DropColumns {
	dc := &DropColumns{builder: newBuilder(d, table), columns: columns}
	for _, c := range columns {
		dc.fail(def.ValidateColumnName(c))
	}
	return dc
}

// Build renders the statements. H2 and SQLite receive one statement
// per column.
func (dc *DropColumns) Build() ([]string, error) {
	dc.requireColumns(len(dc.columns))
	if dc.err != nil {
		return nil, dc.err
	}
	prefix := "ALTER TABLE " + dc.table + " "
	switch dc.dialectID() {
	case dialect.PostgreSQL:
		return []string{
			prefix + "DROP COLUMN " + strings.Join(dc.columns, ", DROP COLUMN "),
		}, nil
	case dialect.MsSQL:
		return []string{
			prefix + "DROP COLUMN " + strings.Join(dc.columns, ", "),
		}, nil
	case dialect.Oracle:
		return []string{
			prefix + "DROP (" + strings.Join(dc.columns, ", ") + ")",
		}, nil
	default:
		stmts := make([]string, 0, len(dc.columns))
		for _, c := range dc.columns {
			stmts = append(stmts, prefix+"DROP COLUMN "+c)
		}
		return stmts, nil
	}
}
