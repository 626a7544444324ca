// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Upsert is an INSERT, UPDATE, or DELETE statement which runs in the
// write transaction of its Context.
//
// Without AddBatch, Execute runs the statement once with the bound
// parameters. After the first AddBatch, the Upsert works in the batch
// mode and Execute runs the pending parameter sets.
type Upsert struct {
	params[*Upsert]
	c         *Context
	batchSize int
	batched   bool
	pending   [][]any
	affected  int64
	closed    bool
}

func newUpsert(c *Context, sql string) *Upsert {
	u := &Upsert{c: c, batchSize: c.BatchSize()}
	u.init(u, sql)
	return u
}

// SetBatchSize sets the number of parameter sets which AddBatch
// collects before executing and committing them.
func (u *Upsert) SetBatchSize(n int) *Upsert {
	if n <= 0 && u.err == nil {
		u.err = cerr.Validationf("batch size must be positive, got %d", n)
	}
	u.batchSize = n
	return u
}

// AddBatch appends the bound parameters to the pending batch and
// unbinds them. When the batch size is reached, the batch is executed
// and committed, and true is returned.
func (u *Upsert) AddBatch(ctx context.Context) (bool, error) {
	if err := u.add(); err != nil {
		return false, err
	}
	if len(u.pending) < u.batchSize {
		return false, nil
	}
	if err := u.flush(ctx); err != nil {
		return false, err
	}
	if err := u.c.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (u *Upsert) add() error {
	if u.closed {
		return errors.New("upsert is closed")
	}
	args, err := u.arguments()
	if err != nil {
		return err
	}
	u.batched = true
	u.pending = append(u.pending, args)
	u.clear()
	return nil
}

// Execute runs the pending batch, or the statement itself if AddBatch
// was never called. Changes are not committed.
func (u *Upsert) Execute(ctx context.Context) error {
	if u.closed {
		return errors.New("upsert is closed")
	}
	if !u.batched {
		args, err := u.arguments()
		if err != nil {
			return err
		}
		u.pending = append(u.pending, args)
		u.clear()
	}
	return u.flush(ctx)
}

// flush executes the pending parameter sets in the write transaction.
func (u *Upsert) flush(ctx context.Context) error {
	if len(u.pending) == 0 {
		return nil
	}
	tx, err := u.c.writeTx(ctx)
	if err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, u.c.db.Rebind(u.sql))
	if err != nil {
		return fmt.Errorf("preparing %q: %w", u.sql, err)
	}
	defer stmt.Close()
	for _, args := range u.pending {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("executing %q: %w", u.sql, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			u.affected += n
		}
	}
	u.pending = u.pending[:0]
	return nil
}

// Commit commits the write transaction of the Context, including the
// changes of other statements of the same Context.
func (u *Upsert) Commit() error {
	return u.c.Commit()
}

// Pending returns the number of parameter sets which are waiting to be
// executed.
func (u *Upsert) Pending() int {
	return len(u.pending)
}

// RowsAffected returns the total number of rows which were affected by
// the executed statements.
func (u *Upsert) RowsAffected() int64 {
	return u.affected
}

// Close discards the pending batch. The executed and uncommitted
// changes remain in the write transaction until the Context is
// committed or closed.
func (u *Upsert) Close() error {
	u.closed = true
	u.pending = nil
	return nil
}
