// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Queryer runs SQL statements on a connection or a transaction.
// Statements use `?` placeholders which are converted to the native
// placeholders of the DBMS by the adapters.
type Queryer interface {
	// Exec runs sql with args and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)

	// Query runs sql with args and returns its result set. The Rows
	// must be closed before the next statement runs on the same
	// connection.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows is a forward-only cursor over a result set.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error

	// Values scans the current row into a slice, one item per column,
	// so callers may process a result set without knowing its columns.
	Values() ([]any, error)
}
