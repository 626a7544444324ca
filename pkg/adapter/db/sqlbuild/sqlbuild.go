// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlbuild provides the DDL builders. Each builder is created
// for a dialect and a table, collects its settings with chainable
// methods, and renders the dialect specific statements by its Build
// method. Builders have no side effect. The first invalid setting is
// kept and returned by Build, so a chain of calls needs one error check.
// Builders do not probe the database catalog and callers which need to
// be reentrant should check the existence of tables, columns, or
// indexes beforehand.
package sqlbuild

import (
	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

type builder struct {
	d     dialect.Dialect
	table string
	err   error
}

func newBuilder(d dialect.Dialect, table string) builder {
	b := builder{d: d, table: table}
	if d == nil {
		b.fail(cerr.MissingFieldf("dialect can't be null"))
	}
	b.fail(def.ValidateTableName(table))
	return b
}

// fail keeps err if it is the first non-nil error.
func (b *builder) fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

func (b *builder) dialectID() string {
	if b.d == nil {
		return ""
	}
	return b.d.ID()
}

// definitions validates and renders cols.
func (b *builder) definitions(cols []def.Column) ([]string, error) {
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		s, err := c.Definition(b.d)
		if err != nil {
			return nil, err
		}
		defs = append(defs, s)
	}
	return defs, nil
}

func (b *builder) requireColumns(n int) {
	if n == 0 {
		b.fail(cerr.Validationf("at least one column must be specified"))
	}
}
