// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler runs statements in the tx transaction. A non-nil error
// rolls the transaction back, otherwise, it will be committed.
type TxHandler func(ctx context.Context, tx Tx) error

// Conn is a single connection which is taken from a Pool. Statements
// which run on a Conn are committed individually.
type Conn interface {
	Queryer

	// Tx begins a transaction and passes it to handler.
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn prevents a Tx to mistakenly implement the Conn interface.
	IsConn()
}
