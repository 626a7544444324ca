// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Select is a SELECT statement which runs on the reading connection.
type Select struct {
	params[*Select]
	c *Context
}

func newSelect(c *Context, sql string) *Select {
	s := &Select{c: c}
	s.init(s, sql)
	return s
}

// RowReader converts a row to a value.
type RowReader[T any] func(r *Row) (T, error)

// RowHandler processes a row of a scrolled result set.
type RowHandler func(r *Row) error

// LongReader reads the first column as an int64.
func LongReader(r *Row) (int64, error) {
	return r.GetLong(1)
}

// IntReader reads the first column as an int.
func IntReader(r *Row) (int, error) {
	return r.GetInt(1)
}

// StringReader reads the first column as a string.
func StringReader(r *Row) (string, error) {
	return r.GetString(1)
}

// Scroll runs the query and passes its rows to handler one at a time,
// without materializing the result set. A handler error is wrapped as
// a *cerr.RowError which names the row.
func (s *Select) Scroll(ctx context.Context, handler RowHandler) error {
	return s.scroll(ctx, func(r *Row) (bool, error) {
		return true, handler(r)
	})
}

// scroll passes rows to f until it returns false or an error.
func (s *Select) scroll(
	ctx context.Context, f func(r *Row) (bool, error),
) error {
	args, err := s.arguments()
	if err != nil {
		return err
	}
	if err = s.c.readable(); err != nil {
		return err
	}
	rows, err := s.c.read.QueryContext(ctx, s.c.db.Rebind(s.sql), args...)
	if err != nil {
		return fmt.Errorf("executing %q: %w", s.sql, err)
	}
	s.c.scrolling = true
	defer func() {
		_ = rows.Close()
		s.c.scrolling = false
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("column-names: %w", err)
	}
	ra := database.RowsAdapter{Rows: rows}
	for rows.Next() {
		vals, err := ra.Values()
		if err != nil {
			return fmt.Errorf("scanning row of %q: %w", s.sql, err)
		}
		row := &Row{columns: cols, values: vals}
		more, err := f(row)
		var fe *flushError
		if errors.As(err, &fe) {
			return fe.err
		}
		if err != nil {
			return &cerr.RowError{Row: row.String(), Err: err}
		}
		if !more {
			return nil
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating rows of %q: %w", s.sql, err)
	}
	return nil
}

// flushError carries a batch write failure through a scroll, since
// it does not belong to the row which filled the batch.
type flushError struct {
	err error
}

func (fe *flushError) Error() string {
	return fe.err.Error()
}

func (fe *flushError) Unwrap() error {
	return fe.err
}

// Get runs s and converts its first row with reader. The found result
// is false if there was no row.
func Get[T any](
	ctx context.Context, s *Select, reader RowReader[T],
) (v T, found bool, err error) {
	err = s.scroll(ctx, func(r *Row) (bool, error) {
		v, err = reader(r)
		found = err == nil
		return false, err
	})
	return v, found, err
}

// List runs s and converts all of its rows with reader.
func List[T any](
	ctx context.Context, s *Select, reader RowReader[T],
) ([]T, error) {
	var vs []T
	err := s.scroll(ctx, func(r *Row) (bool, error) {
		v, err := reader(r)
		if err != nil {
			return false, err
		}
		vs = append(vs, v)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return vs, nil
}
