// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "fmt"

// MismatchingSemVerError reports a config file whose format version
// cannot be read by this release. It matches ErrConfiguration.
// Versions are kept as major, minor, and patch numbers.
type MismatchingSemVerError struct {
	Expected [3]uint
	Actual   [3]uint
}

func (msve *MismatchingSemVerError) Error() string {
	e, a := msve.Expected, msve.Actual
	return fmt.Sprintf(
		"expected v%d.%d.%d, but got v%d.%d.%d",
		e[0], e[1], e[2], a[0], a[1], a[2],
	)
}

func (msve *MismatchingSemVerError) Unwrap() error {
	return ErrConfiguration
}
