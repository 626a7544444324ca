// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the value types and helpers which are
// shared by the configuration format packages. Optional settings are
// kept as pointers, so a missing item can be told apart from a zero
// value and replaced by its default during the normalization.
package settings

import (
	"cmp"
	"fmt"
)

// Default makes (*p) point to a copy of v if it is nil.
func Default[T any](p **T, v T) {
	if *p == nil {
		*p = &v
	}
}

// Nil2Zero makes (*p) point to the zero value of T if it is nil.
func Nil2Zero[T any](p **T) {
	var zero T
	Default(p, zero)
}

// OutOfRangeError reports a Value which is not in [Min, Max].
type OutOfRangeError[T cmp.Ordered] struct {
	Value    T
	Min, Max T
}

// Error implements the error interface.
func (e *OutOfRangeError[T]) Error() string {
	return fmt.Sprintf(
		"%v is out of the [%v, %v] range", e.Value, e.Min, e.Max,
	)
}

// VerifyRange returns an *OutOfRangeError if v is not nil and is
// outside the [minb, maxb] range.
func VerifyRange[T cmp.Ordered](v *T, minb, maxb T) error {
	if v == nil || (minb <= *v && *v <= maxb) {
		return nil
	}
	return &OutOfRangeError[T]{Value: *v, Min: minb, Max: maxb}
}
