// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package def provides the column definitions which are consumed by
// the DDL builders. Columns are created by the type specific functions,
// such as Varchar or BigInt, and customized with functional options.
// Columns are nullable by default. Invalid definitions are reported by
// the Validate method, so builders can collect the first error and
// return it along with the rendered statements.
package def

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Type is the logical type of a column.
type Type int

// Supported logical column types.
const (
	TypeVarchar Type = iota + 1
	TypeInteger
	TypeBigInt
	TypeBoolean
	TypeBlob
	TypeClob
	TypeDecimal
	TypeTinyInt
	TypeTimestamp
)

func (t Type) String() string {
	switch t {
	case TypeVarchar:
		return "varchar"
	case TypeInteger:
		return "integer"
	case TypeBigInt:
		return "bigint"
	case TypeBoolean:
		return "boolean"
	case TypeBlob:
		return "blob"
	case TypeClob:
		return "clob"
	case TypeDecimal:
		return "decimal"
	case TypeTinyInt:
		return "tinyint"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Default precision and scale of the decimal columns.
const (
	DefaultPrecision = 38
	DefaultScale     = 20
)

// Column is an immutable column definition.
type Column struct {
	name     string
	typ      Type
	nullable bool

	limit            int // varchar max length
	ignoreOracleUnit bool
	precision, scale int
	defaultValue     any
}

// Option customizes a Column.
type Option func(c *Column)

// NotNull makes the column non-nullable.
func NotNull() Option {
	return func(c *Column) {
		c.nullable = false
	}
}

// Nullable sets the nullability of the column.
func Nullable(nullable bool) Option {
	return func(c *Column) {
		c.nullable = nullable
	}
}

// Default sets the default value of the column. The value must match
// the column type: string for varchar and clob, bool for boolean, and
// an integer for the integral types.
func Default(v any) Option {
	return func(c *Column) {
		c.defaultValue = v
	}
}

// IgnoreOracleUnit renders Oracle varchar columns without the CHAR
// length semantics.
func IgnoreOracleUnit() Option {
	return func(c *Column) {
		c.ignoreOracleUnit = true
	}
}

func newColumn(name string, t Type, opts []Option) Column {
	c := Column{name: name, typ: t, nullable: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Varchar defines a variable length string column with limit chars.
func Varchar(name string, limit int, opts ...Option) Column {
	c := newColumn(name, TypeVarchar, opts)
	c.limit = limit
	return c
}

// Integer defines a 32 bits integer column.
func Integer(name string, opts ...Option) Column {
	return newColumn(name, TypeInteger, opts)
}

// BigInt defines a 64 bits integer column.
func BigInt(name string, opts ...Option) Column {
	return newColumn(name, TypeBigInt, opts)
}

// Boolean defines a boolean column.
func Boolean(name string, opts ...Option) Column {
	return newColumn(name, TypeBoolean, opts)
}

// Blob defines a binary large object column.
func Blob(name string, opts ...Option) Column {
	return newColumn(name, TypeBlob, opts)
}

// Clob defines a character large object column.
func Clob(name string, opts ...Option) Column {
	return newColumn(name, TypeClob, opts)
}

// Decimal defines a fixed point column. Zero precision and scale are
// replaced by DefaultPrecision and DefaultScale.
func Decimal(name string, precision, scale int, opts ...Option) Column {
	c := newColumn(name, TypeDecimal, opts)
	if precision == 0 && scale == 0 {
		precision, scale = DefaultPrecision, DefaultScale
	}
	c.precision, c.scale = precision, scale
	return c
}

// TinyInt defines a small integer column.
func TinyInt(name string, opts ...Option) Column {
	return newColumn(name, TypeTinyInt, opts)
}

// Timestamp defines a date and time column.
func Timestamp(name string, opts ...Option) Column {
	return newColumn(name, TypeTimestamp, opts)
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Type returns the logical column type.
func (c Column) Type() Type { return c.typ }

// IsNullable reports whether the column accepts NULL values.
func (c Column) IsNullable() bool { return c.nullable }

// Limit returns the max length of a varchar column.
func (c Column) Limit() int { return c.limit }

// DefaultValue returns the default value or nil.
func (c Column) DefaultValue() any { return c.defaultValue }

// Validate checks the column name and type specific settings.
func (c Column) Validate() error {
	if err := ValidateColumnName(c.name); err != nil {
		return err
	}
	switch c.typ {
	case TypeVarchar:
		if c.limit <= 0 {
			return cerr.Validationf(
				"Limit of column '%s' must be greater than 0, got %d",
				c.name, c.limit,
			)
		}
	case TypeDecimal:
		if c.precision <= 0 || c.scale < 0 || c.scale > c.precision {
			return cerr.Validationf(
				"Invalid precision (%d) or scale (%d) of column '%s'",
				c.precision, c.scale, c.name,
			)
		}
	case 0:
		return cerr.MissingFieldf("Type of column '%s' is missing", c.name)
	}
	return c.validateDefault()
}

func (c Column) validateDefault() error {
	if c.defaultValue == nil {
		return nil
	}
	ok := false
	switch c.defaultValue.(type) {
	case string:
		ok = c.typ == TypeVarchar || c.typ == TypeClob
	case bool:
		ok = c.typ == TypeBoolean
	case int, int32, int64:
		switch c.typ {
		case TypeInteger, TypeBigInt, TypeTinyInt, TypeDecimal:
			ok = true
		}
	}
	if !ok {
		return cerr.Validationf(
			"Default value %v of type %T is not supported by %s column '%s'",
			c.defaultValue, c.defaultValue, c.typ, c.name,
		)
	}
	return nil
}

// SQLType renders the column type for the d dialect.
func (c Column) SQLType(d dialect.Dialect) (string, error) {
	id := d.ID()
	switch c.typ {
	case TypeVarchar:
		switch id {
		case dialect.MsSQL:
			return fmt.Sprintf("NVARCHAR (%d)", c.limit), nil
		case dialect.Oracle:
			if c.ignoreOracleUnit {
				return fmt.Sprintf("VARCHAR2 (%d)", c.limit), nil
			}
			return fmt.Sprintf("VARCHAR2 (%d CHAR)", c.limit), nil
		default:
			return fmt.Sprintf("VARCHAR (%d)", c.limit), nil
		}
	case TypeInteger:
		switch id {
		case dialect.MsSQL:
			return "INT", nil
		case dialect.Oracle:
			return "NUMBER(38,0)", nil
		default:
			return "INTEGER", nil
		}
	case TypeBigInt:
		if id == dialect.Oracle {
			return "NUMBER (38)", nil
		}
		return "BIGINT", nil
	case TypeBoolean:
		switch id {
		case dialect.MsSQL:
			return "BIT", nil
		case dialect.Oracle:
			return "NUMBER(1)", nil
		default:
			return "BOOLEAN", nil
		}
	case TypeBlob:
		switch id {
		case dialect.MsSQL:
			return "VARBINARY(MAX)", nil
		case dialect.PostgreSQL:
			return "BYTEA", nil
		default:
			return "BLOB", nil
		}
	case TypeClob:
		switch id {
		case dialect.MsSQL:
			return "NVARCHAR (MAX)", nil
		case dialect.PostgreSQL, dialect.SQLite:
			return "TEXT", nil
		default:
			return "CLOB", nil
		}
	case TypeDecimal:
		switch id {
		case dialect.MsSQL:
			return fmt.Sprintf("DECIMAL (%d,%d)", c.precision, c.scale), nil
		case dialect.Oracle:
			return fmt.Sprintf("NUMBER(%d,%d)", c.precision, c.scale), nil
		default:
			return fmt.Sprintf("NUMERIC (%d,%d)", c.precision, c.scale), nil
		}
	case TypeTinyInt:
		switch id {
		case dialect.PostgreSQL, dialect.SQLite:
			return "SMALLINT", nil
		case dialect.Oracle:
			return "NUMBER(3)", nil
		default:
			return "TINYINT", nil
		}
	case TypeTimestamp:
		switch id {
		case dialect.MsSQL:
			return "DATETIME", nil
		case dialect.Oracle:
			return "TIMESTAMP (6)", nil
		default:
			return "TIMESTAMP", nil
		}
	}
	return "", cerr.Validationf(
		"Unsupported type %s of column '%s'", c.typ, c.name,
	)
}

// DefaultSQL renders the DEFAULT literal, or "" when no default value
// is configured.
func (c Column) DefaultSQL(d dialect.Dialect) string {
	switch v := c.defaultValue.(type) {
	case nil:
		return ""
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return d.TrueSQL()
		}
		return d.FalseSQL()
	default:
		return fmt.Sprint(v)
	}
}

// Definition renders the complete column definition, like
// `status VARCHAR (1) DEFAULT 'P' NOT NULL`.
func (c Column) Definition(d dialect.Dialect) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	t, err := c.SQLType(d)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(c.name)
	sb.WriteByte(' ')
	sb.WriteString(t)
	if ds := c.DefaultSQL(d); ds != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(ds)
	}
	if c.nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	return sb.String(), nil
}
