// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLState codes which are inspected by the callers.
const (
	UndefinedTable = "42P01"
	StartingUp     = "57P03"
)

// HasSQLState reports whether err carries a PostgreSQL error with the
// given SQLState code.
func HasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == code
}
