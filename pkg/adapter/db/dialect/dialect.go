// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dialect describes the supported database dialects. A dialect
// knows its placeholder style, its boolean literals, and the catalog
// queries which answer whether a table, column, or index exists.
// The DDL builders switch on the dialect ID for rendering the SQL types
// and the dialect specific statements.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// These constants are the IDs of the supported dialects.
const (
	H2         = "h2"
	MsSQL      = "mssql"
	Oracle     = "oracle"
	PostgreSQL = "postgresql"
	SQLite     = "sqlite"
)

// Dialect is implemented by all supported database dialects.
// All catalog queries use `?` placeholders and must be rebound with
// BindType before execution. They return a single count column.
type Dialect interface {
	// ID returns one of the dialect ID constants.
	ID() string

	// BindType returns the sqlx placeholder style, e.g., sqlx.DOLLAR.
	BindType() int

	// TrueSQL and FalseSQL return the boolean literals.
	TrueSQL() string
	FalseSQL() string

	// TableExistsSQL expects the table name as its parameter.
	TableExistsSQL() string

	// ColumnExistsSQL expects the table and column names.
	ColumnExistsSQL() string

	// IndexExistsSQL expects the table and index names.
	IndexExistsSQL() string
}

type dialect struct {
	id          string
	bindType    int
	trueSQL     string
	falseSQL    string
	tableSQL    string
	columnSQL   string
	indexSQL    string
	driverNames []string
}

func (d *dialect) ID() string              { return d.id }
func (d *dialect) BindType() int           { return d.bindType }
func (d *dialect) TrueSQL() string         { return d.trueSQL }
func (d *dialect) FalseSQL() string        { return d.falseSQL }
func (d *dialect) TableExistsSQL() string  { return d.tableSQL }
func (d *dialect) ColumnExistsSQL() string { return d.columnSQL }
func (d *dialect) IndexExistsSQL() string  { return d.indexSQL }

func (d *dialect) String() string {
	return d.id
}

var (
	h2 = &dialect{
		id:       H2,
		bindType: sqlx.QUESTION,
		trueSQL:  "true",
		falseSQL: "false",
		tableSQL: "select count(1) from information_schema.tables" +
			" where upper(table_name) = upper(?)",
		columnSQL: "select count(1) from information_schema.columns" +
			" where upper(table_name) = upper(?)" +
			" and upper(column_name) = upper(?)",
		indexSQL: "select count(1) from information_schema.indexes" +
			" where upper(table_name) = upper(?)" +
			" and upper(index_name) = upper(?)",
		driverNames: []string{"h2"},
	}
	msSQL = &dialect{
		id:       MsSQL,
		bindType: sqlx.AT,
		trueSQL:  "1",
		falseSQL: "0",
		tableSQL: "select count(1) from information_schema.tables" +
			" where table_name = ?",
		columnSQL: "select count(1) from information_schema.columns" +
			" where table_name = ? and column_name = ?",
		indexSQL: "select count(1) from sys.indexes i" +
			" join sys.tables t on i.object_id = t.object_id" +
			" where t.name = ? and i.name = ?",
		driverNames: []string{"sqlserver", "mssql"},
	}
	oracle = &dialect{
		id:       Oracle,
		bindType: sqlx.NAMED,
		trueSQL:  "1",
		falseSQL: "0",
		tableSQL: "select count(1) from user_tables" +
			" where table_name = upper(?)",
		columnSQL: "select count(1) from user_tab_columns" +
			" where table_name = upper(?) and column_name = upper(?)",
		indexSQL: "select count(1) from user_indexes" +
			" where table_name = upper(?) and index_name = upper(?)",
		driverNames: []string{"oracle", "godror"},
	}
	postgreSQL = &dialect{
		id:       PostgreSQL,
		bindType: sqlx.DOLLAR,
		trueSQL:  "true",
		falseSQL: "false",
		tableSQL: "select count(1) from information_schema.tables" +
			" where table_schema = current_schema() and table_name = ?",
		columnSQL: "select count(1) from information_schema.columns" +
			" where table_schema = current_schema()" +
			" and table_name = ? and column_name = ?",
		indexSQL: "select count(1) from pg_indexes" +
			" where schemaname = current_schema()" +
			" and tablename = ? and indexname = ?",
		driverNames: []string{"pgx", "postgres"},
	}
	sqlite = &dialect{
		id:       SQLite,
		bindType: sqlx.QUESTION,
		trueSQL:  "true",
		falseSQL: "false",
		tableSQL: "select count(1) from sqlite_master" +
			" where type = 'table' and name = ?",
		columnSQL: "select count(1) from pragma_table_info(?)" +
			" where name = ?",
		indexSQL: "select count(1) from sqlite_master" +
			" where type = 'index' and tbl_name = ? and name = ?",
		driverNames: []string{"sqlite", "sqlite3"},
	}
)

var all = []*dialect{h2, msSQL, oracle, postgreSQL, sqlite}

// New returns the dialect with the given id.
func New(id string) (Dialect, error) {
	id = strings.ToLower(id)
	for _, d := range all {
		if d.id == id {
			return d, nil
		}
	}
	return nil, cerr.Configurationf("unsupported dialect: %q", id)
}

// ForDriver returns the dialect which matches a database/sql driver
// name, such as "pgx" or "sqlite".
func ForDriver(driverName string) (Dialect, error) {
	for _, d := range all {
		for _, n := range d.driverNames {
			if n == driverName {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf(
		"no dialect matches %q driver: %w", driverName, cerr.ErrConfiguration,
	)
}

// MustNew is like New, but panics if id is not supported.
// It simplifies the initialization of package-level variables and tests.
func MustNew(id string) Dialect {
	d, err := New(id)
	if err != nil {
		panic(err)
	}
	return d
}

// IDs returns the supported dialect IDs.
func IDs() []string {
	ids := make([]string, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.id)
	}
	return ids
}

// SupportsDropIndexIfExists reports whether the d dialect accepts the
// DROP INDEX IF EXISTS statement.
func SupportsDropIndexIfExists(d Dialect) bool {
	switch d.ID() {
	case H2, PostgreSQL, SQLite:
		return true
	default:
		return false
	}
}
