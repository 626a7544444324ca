// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// MassRowSplitter splits each selected row into zero or more T values
// and inserts every value with a batched statement. It is useful for
// normalizing a multi-valued column into a new table.
type MassRowSplitter[T any] struct {
	c         *Context
	sel       *Select
	split     func(r *Row) ([]T, error)
	insert    *Upsert
	batchSize int
	stats     Stats
}

// NewMassRowSplitter creates an empty MassRowSplitter on c.
func NewMassRowSplitter[T any](c *Context) *MassRowSplitter[T] {
	return &MassRowSplitter[T]{c: c, batchSize: c.BatchSize()}
}

// Select sets the SELECT statement.
func (s *MassRowSplitter[T]) Select(sql string) *Select {
	s.sel = newSelect(s.c, sql)
	return s.sel
}

// SplitRow sets the function which splits a row into values.
func (s *MassRowSplitter[T]) SplitRow(f func(r *Row) ([]T, error)) {
	s.split = f
}

// Insert sets the statement which inserts each value.
func (s *MassRowSplitter[T]) Insert(sql string) *Upsert {
	s.insert = newUpsert(s.c, sql)
	return s.insert
}

// SetBatchSize sets the number of inserted values per committed batch.
func (s *MassRowSplitter[T]) SetBatchSize(n int) *MassRowSplitter[T] {
	s.batchSize = n
	return s
}

// Stats returns the counters of the last execution. Accepted counts
// the inserted values.
func (s *MassRowSplitter[T]) Stats() Stats {
	return s.stats
}

// Execute scrolls the selected rows, splits each one, and calls h for
// each value. Values which are accepted by h are inserted.
func (s *MassRowSplitter[T]) Execute(
	ctx context.Context, h func(v T, u *Upsert) (bool, error),
) error {
	if s.sel == nil || s.insert == nil || s.split == nil {
		return cerr.Configurationf(
			"SELECT, split function, or INSERT requests are not defined",
		)
	}
	if s.batchSize <= 0 {
		return cerr.Validationf(
			"batch size must be positive, got %d", s.batchSize,
		)
	}
	s.stats = Stats{}
	err := s.sel.Scroll(ctx, func(r *Row) error {
		s.stats.Rows++
		vs, err := s.split(r)
		if err != nil {
			return err
		}
		for _, v := range vs {
			ok, err := h(v, s.insert)
			if err != nil {
				return err
			}
			if !ok {
				s.insert.clear()
				continue
			}
			if err = s.insert.add(); err != nil {
				return err
			}
			s.stats.Accepted++
			if s.insert.Pending() >= s.batchSize {
				if err = s.flush(ctx); err != nil {
					return &flushError{err: err}
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.insert.Pending() > 0 {
		return s.flush(ctx)
	}
	return nil
}

func (s *MassRowSplitter[T]) flush(ctx context.Context) error {
	if err := s.insert.flush(ctx); err != nil {
		return err
	}
	if err := s.c.Commit(); err != nil {
		return err
	}
	s.stats.Commits++
	return nil
}
