// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// ConnHandler uses the c connection which is released after return.
type ConnHandler func(ctx context.Context, c Conn) error

// Pool manages the database connections.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
