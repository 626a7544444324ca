// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// AutoIncrementColumnName is the only accepted auto increment column.
const AutoIncrementColumnName = "id"

// CreateTable renders the CREATE TABLE statement, along with the
// sequence and trigger statements which Oracle needs for emulating an
// auto increment primary key.
type CreateTable struct {
	builder
	pkColumns []def.Column
	columns   []def.Column
	autoIncr  *def.Column
	pkName    string
}

// NewCreateTable creates a CreateTable builder for the table.
func NewCreateTable(d dialect.Dialect, table string) *CreateTable {
	return &CreateTable{builder: newBuilder(d, table)}
}

// AddColumn appends a non primary key column.
func (ct *CreateTable) AddColumn(c def.Column) *CreateTable {
	ct.fail(c.Validate())
	ct.columns = append(ct.columns, c)
	return ct
}

// AddPkColumn appends a primary key column. Primary key columns are
// rendered before the other columns.
func (ct *CreateTable) AddPkColumn(c def.Column) *CreateTable {
	ct.fail(c.Validate())
	ct.pkColumns = append(ct.pkColumns, c)
	return ct
}

// AddAutoIncrementPkColumn appends an auto increment primary key column.
// It must be a non-nullable integer or big integer column, named id.
func (ct *CreateTable) AddAutoIncrementPkColumn(c def.Column) *CreateTable {
	switch {
	case c.Name() != AutoIncrementColumnName:
		ct.fail(cerr.Validationf("Auto increment column name must be id"))
	case ct.autoIncr != nil:
		ct.fail(cerr.Validationf(
			"There can't be more than one auto increment column",
		))
	case c.Type() != def.TypeInteger && c.Type() != def.TypeBigInt:
		ct.fail(cerr.Validationf(
			"Auto increment column must either be BigInteger or Integer",
		))
	case c.IsNullable():
		ct.fail(cerr.Validationf("Auto increment column can't be nullable"))
	}
	ct.autoIncr = &c
	return ct.AddPkColumn(c)
}

// WithPkConstraintName overrides the default pk_<table> name of the
// primary key constraint.
func (ct *CreateTable) WithPkConstraintName(name string) *CreateTable {
	ct.fail(def.ValidateConstraintName(name))
	ct.pkName = name
	return ct
}

// Build renders the statements.
func (ct *CreateTable) Build() ([]string, error) {
	ct.requireColumns(len(ct.pkColumns) + len(ct.columns))
	if ct.autoIncr != nil && ct.dialectID() == dialect.SQLite &&
		len(ct.pkColumns) > 1 {
		ct.fail(cerr.Validationf(
			"Auto increment column can't be part of a composite primary key",
		))
	}
	if ct.err != nil {
		return nil, ct.err
	}
	defs := make([]string, 0, len(ct.pkColumns)+len(ct.columns))
	inlinePk := false
	for _, c := range ct.pkColumns {
		s, inline, err := ct.pkDefinition(c)
		if err != nil {
			return nil, err
		}
		inlinePk = inlinePk || inline
		defs = append(defs, s)
	}
	others, err := ct.definitions(ct.columns)
	if err != nil {
		return nil, err
	}
	defs = append(defs, others...)

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(ct.table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(defs, ","))
	if len(ct.pkColumns) > 0 && !inlinePk {
		name := ct.pkName
		if name == "" {
			name = "pk_" + ct.table
		}
		names := make([]string, 0, len(ct.pkColumns))
		for _, c := range ct.pkColumns {
			names = append(names, c.Name())
		}
		fmt.Fprintf(
			&sb, ", CONSTRAINT %s PRIMARY KEY (%s)",
			name, strings.Join(names, ","),
		)
	}
	sb.WriteString(")")
	stmts := []string{sb.String()}
	if ct.autoIncr != nil && ct.dialectID() == dialect.Oracle {
		stmts = append(stmts, ct.oracleAutoIncrement()...)
	}
	return stmts, nil
}

// pkDefinition renders a primary key column. The inline flag reports
// that the primary key is declared by the column itself.
func (ct *CreateTable) pkDefinition(
	c def.Column,
) (s string, inline bool, err error) {
	if ct.autoIncr == nil || c.Name() != ct.autoIncr.Name() {
		s, err = c.Definition(ct.d)
		return s, false, err
	}
	big := c.Type() == def.TypeBigInt
	switch ct.dialectID() {
	case dialect.PostgreSQL:
		if big {
			return c.Name() + " BIGSERIAL NOT NULL", false, nil
		}
		return c.Name() + " SERIAL NOT NULL", false, nil
	case dialect.MsSQL:
		t, _ := c.SQLType(ct.d)
		return c.Name() + " " + t + " NOT NULL IDENTITY (1,1)", false, nil
	case dialect.H2:
		t, _ := c.SQLType(ct.d)
		return c.Name() + " " + t + " NOT NULL AUTO_INCREMENT (1,1)",
			false, nil
	case dialect.SQLite:
		// only INTEGER PRIMARY KEY columns alias the rowid
		return c.Name() + " INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT",
			true, nil
	default:
		t, _ := c.SQLType(ct.d)
		return c.Name() + " " + t + " NOT NULL", false, nil
	}
}

func (ct *CreateTable) oracleAutoIncrement() []string {
	seq := ct.table + "_seq"
	return []string{
		"CREATE SEQUENCE " + seq + " START WITH 1 INCREMENT BY 1",
		"CREATE OR REPLACE TRIGGER " + ct.table + "_idt" +
			" BEFORE INSERT ON " + ct.table +
			" FOR EACH ROW" +
			" BEGIN" +
			" IF :new.id IS null THEN" +
			" SELECT " + seq + ".nextval INTO :new.id FROM dual;" +
			" END IF;" +
			" END;",
	}
}
