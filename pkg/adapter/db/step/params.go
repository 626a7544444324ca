// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"fmt"
	"slices"
	"time"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// params keeps the positional parameters of a statement. The S type
// parameter is the statement type which embeds params, so setters can
// return it for chaining.
type params[S any] struct {
	self  S
	sql   string
	n     int // number of placeholders in sql
	args  []any
	bound []bool
	err   error
}

func (p *params[S]) init(self S, sql string) {
	p.self = self
	p.sql = sql
	p.n = database.CountPlaceholders(sql)
}

func (p *params[S]) set(i int, v any) S {
	if i < 1 {
		if p.err == nil {
			p.err = cerr.Validationf(
				"parameter index must be greater than 0, got %d", i,
			)
		}
		return p.self
	}
	for len(p.args) < i {
		p.args = append(p.args, nil)
		p.bound = append(p.bound, false)
	}
	p.args[i-1] = v
	p.bound[i-1] = true
	return p.self
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// SetString binds v to the i-th parameter.
func (p *params[S]) SetString(i int, v string) S {
	return p.set(i, v)
}

// SetNullableString binds v, or NULL if v is nil, to the i-th parameter.
func (p *params[S]) SetNullableString(i int, v *string) S {
	return p.set(i, nullable(v))
}

// SetLong binds v to the i-th parameter.
func (p *params[S]) SetLong(i int, v int64) S {
	return p.set(i, v)
}

// SetNullableLong binds v, or NULL if v is nil, to the i-th parameter.
func (p *params[S]) SetNullableLong(i int, v *int64) S {
	return p.set(i, nullable(v))
}

// SetInt binds v to the i-th parameter.
func (p *params[S]) SetInt(i int, v int) S {
	return p.set(i, int64(v))
}

// SetNullableInt binds v, or NULL if v is nil, to the i-th parameter.
func (p *params[S]) SetNullableInt(i int, v *int) S {
	if v == nil {
		return p.set(i, nil)
	}
	return p.set(i, int64(*v))
}

// SetBoolean binds v to the i-th parameter.
func (p *params[S]) SetBoolean(i int, v bool) S {
	return p.set(i, v)
}

// SetNullableBoolean binds v, or NULL if v is nil, to the i-th
// parameter.
func (p *params[S]) SetNullableBoolean(i int, v *bool) S {
	return p.set(i, nullable(v))
}

// SetDate binds v to the i-th parameter.
func (p *params[S]) SetDate(i int, v time.Time) S {
	return p.set(i, v)
}

// SetNullableDate binds v, or NULL if v is nil, to the i-th parameter.
func (p *params[S]) SetNullableDate(i int, v *time.Time) S {
	return p.set(i, nullable(v))
}

// SetDouble binds v to the i-th parameter.
func (p *params[S]) SetDouble(i int, v float64) S {
	return p.set(i, v)
}

// SetNullableDouble binds v, or NULL if v is nil, to the i-th
// parameter.
func (p *params[S]) SetNullableDouble(i int, v *float64) S {
	return p.set(i, nullable(v))
}

// SetBytes binds v to the i-th parameter. A nil v binds NULL.
func (p *params[S]) SetBytes(i int, v []byte) S {
	if v == nil {
		return p.set(i, nil)
	}
	return p.set(i, v)
}

// arguments returns a copy of the bound parameters, failing if any
// placeholder of the statement is left unbound.
func (p *params[S]) arguments() ([]any, error) {
	if p.err != nil {
		return nil, p.err
	}
	for i := 0; i < p.n; i++ {
		if i >= len(p.bound) || !p.bound[i] {
			return nil, fmt.Errorf(
				"no value specified for parameter %d of %q: %w",
				i+1, p.sql, cerr.ErrMissingParameter,
			)
		}
	}
	return slices.Clone(p.args), nil
}

// clear unbinds all parameters, so the next row can bind its values.
func (p *params[S]) clear() {
	p.args = p.args[:0]
	p.bound = p.bound[:0]
}
