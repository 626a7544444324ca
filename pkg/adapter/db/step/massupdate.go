// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// MassUpdate rewrites the rows of a SELECT result set with one or more
// UPDATE, INSERT, or DELETE statements. Rows are scrolled one at a time
// and accepted rows are written in batches. Each batch of accepted rows
// is executed and committed together, so a failure keeps the former
// batches committed.
type MassUpdate struct {
	c         *Context
	sel       *Select
	updates   []*Upsert
	batchSize int
	stats     Stats
}

// Stats counts the work of a MassUpdate execution.
type Stats struct {
	Rows     int64 // scrolled rows
	Accepted int64 // rows which were accepted by the handler
	Commits  int64 // committed batches
}

// Handler sets the parameters of u for the r row and reports whether
// the row should be written.
type Handler func(r *Row, u *Upsert) (bool, error)

// MultiHandler is like Handler for the index-th update statement,
// where index is zero-based in the order of the Update calls.
type MultiHandler func(r *Row, u *Upsert, index int) (bool, error)

// Select sets the SELECT statement. Its parameters may be bound on the
// returned *Select.
func (m *MassUpdate) Select(sql string) *Select {
	m.sel = newSelect(m.c, sql)
	return m.sel
}

// Update adds a statement which is executed for the accepted rows.
func (m *MassUpdate) Update(sql string) *Upsert {
	u := newUpsert(m.c, sql)
	m.updates = append(m.updates, u)
	return u
}

// SetBatchSize sets the number of accepted rows per committed batch.
func (m *MassUpdate) SetBatchSize(n int) *MassUpdate {
	m.batchSize = n
	return m
}

// Stats returns the counters of the last execution.
func (m *MassUpdate) Stats() Stats {
	return m.stats
}

// Execute scrolls the selected rows and calls h for each one. It needs
// exactly one Update statement.
func (m *MassUpdate) Execute(ctx context.Context, h Handler) error {
	if len(m.updates) > 1 {
		return cerr.Configurationf(
			"%d UPDATE requests are defined, use ExecuteMulti",
			len(m.updates),
		)
	}
	return m.ExecuteMulti(ctx, func(r *Row, u *Upsert, _ int) (bool, error) {
		return h(r, u)
	})
}

// ExecuteMulti scrolls the selected rows and calls h once per row and
// Update statement. A row is accepted if h accepts it for any of the
// statements. Every batch size accepted rows, the pending statements
// are executed in their Update order and committed. The remaining
// partial batch is executed and committed after the last row.
func (m *MassUpdate) ExecuteMulti(ctx context.Context, h MultiHandler) error {
	if m.sel == nil || len(m.updates) == 0 {
		return cerr.Configurationf("SELECT or UPDATE requests are not defined")
	}
	if m.batchSize <= 0 {
		return cerr.Validationf(
			"batch size must be positive, got %d", m.batchSize,
		)
	}
	m.stats = Stats{}
	inBatch := 0
	err := m.sel.Scroll(ctx, func(r *Row) error {
		m.stats.Rows++
		accepted := false
		for i, u := range m.updates {
			ok, err := h(r, u, i)
			if err != nil {
				return err
			}
			if !ok {
				u.clear()
				continue
			}
			if err = u.add(); err != nil {
				return err
			}
			accepted = true
		}
		if !accepted {
			return nil
		}
		m.stats.Accepted++
		inBatch++
		if inBatch < m.batchSize {
			return nil
		}
		inBatch = 0
		if err := m.flush(ctx); err != nil {
			return &flushError{err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if inBatch > 0 {
		return m.flush(ctx)
	}
	return nil
}

// flush executes the pending statements and commits them.
func (m *MassUpdate) flush(ctx context.Context) error {
	for _, u := range m.updates {
		if err := u.flush(ctx); err != nil {
			return err
		}
	}
	if err := m.c.Commit(); err != nil {
		return err
	}
	m.stats.Commits++
	return nil
}
