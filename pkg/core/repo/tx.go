// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx represents a database transaction. It is unsafe to be used
// concurrently.
type Tx interface {
	Queryer

	// IsTx prevents a Conn to mistakenly implement the Tx interface.
	IsTx()
}
