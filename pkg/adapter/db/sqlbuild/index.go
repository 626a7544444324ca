// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlbuild

import (
	"strings"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
)

// CreateIndex renders a CREATE [UNIQUE] INDEX statement.
type CreateIndex struct {
	builder
	name    string
	unique  bool
	columns []string
}

// NewCreateIndex creates a CreateIndex builder for the named index of
// the table.
func NewCreateIndex(d dialect.Dialect, table, name string) *CreateIndex {
	ci := &CreateIndex{builder: newBuilder(d, table), name: name}
	ci.fail(def.ValidateIndexName(name))
	return ci
}

// Unique makes the index unique.
func (ci *CreateIndex) Unique() *CreateIndex {
	ci.unique = true
	return ci
}

// AddColumn appends the named column to the indexed columns.
func (ci *CreateIndex) AddColumn(name string) *CreateIndex {
	ci.fail(def.ValidateColumnName(name))
	ci.columns = append(ci.columns, name)
	return ci
}

// Build renders the statement.
func (ci *CreateIndex) Build() ([]string, error) {
	ci.requireColumns(len(ci.columns))
	if ci.err != nil {
		return nil, ci.err
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if ci.unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	sb.WriteString(ci.name)
	sb.WriteString(" ON ")
	sb.WriteString(ci.table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(ci.columns, ","))
	sb.WriteString(")")
	return []string{sb.String()}, nil
}

// DropIndex renders a DROP INDEX statement. Dialects which support it
// receive an IF EXISTS guard.
type DropIndex struct {
	builder
	name string
}

// NewDropIndex creates a DropIndex builder for the named index of the
// table.
func NewDropIndex(d dialect.Dialect, table, name string) *DropIndex {
	di := &DropIndex{builder: newBuilder(d, table), name: name}
	di.fail(def.ValidateIndexName(name))
	return di
}

// Build renders the statement.
func (di *DropIndex) Build() ([]string, error) {
	if di.err != nil {
		return nil, di.err
	}
	switch {
	case di.dialectID() == dialect.MsSQL:
		return []string{"DROP INDEX " + di.name + " ON " + di.table}, nil
	case dialect.SupportsDropIndexIfExists(di.d):
		return []string{"DROP INDEX IF EXISTS " + di.name}, nil
	default:
		return []string{"DROP INDEX " + di.name}, nil
	}
}
