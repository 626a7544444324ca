// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core errors. Errors are grouped in four
// kinds, namely configuration, resolution, execution, and row-context
// errors. Each kind has a sentinel error which all of its instances
// match with errors.Is, so callers may branch on the kind of an error
// without knowing its concrete type. The Error type may be used for
// attaching an HTTP status code to an error, so adapters can report
// it properly.
package cerr

import (
	"fmt"
	"net/http"
)

// Error attaches an HTTP status code to Err, so the status server can
// report it properly.
type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

// Unavailable wraps err which was caused by an unreachable dependency,
// such as the database.
func Unavailable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusServiceUnavailable}
}
