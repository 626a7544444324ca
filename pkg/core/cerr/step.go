// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "fmt"

// DuplicateNumberError reports that a migration number was registered
// more than once. It matches ErrDuplicateKey.
type DuplicateNumberError struct {
	Number int64
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf(
		"migration number %d is already registered", e.Number,
	)
}

// Unwrap returns ErrDuplicateKey, so errors.Is can detect the kind.
func (e *DuplicateNumberError) Unwrap() error {
	return ErrDuplicateKey
}

// StepExecutionError wraps the failure of one migration step, naming
// the failing step number and description. The original error is kept
// as the cause and errors.Is(err, ErrExecution) reports true.
type StepExecutionError struct {
	Number      int64
	Description string
	Err         error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf(
		"execution of migration step #%d '%s' failed: %v",
		e.Number, e.Description, e.Err,
	)
}

// Unwrap returns both of the ErrExecution sentinel and the cause.
func (e *StepExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// RowError augments err with the identifying columns of the row which
// was being processed when err happened. Row holds the rendered row,
// like [id=2].
type RowError struct {
	Row string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf(
		"error during processing of row: %s: %v", e.Row, e.Err,
	)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrRowContext, e.Err}
}

// NullColumnError reports that a non-nullable getter met an SQL NULL.
// Index is the 1-based column position and Name is its label.
type NullColumnError struct {
	Index int
	Name  string
	Row   string
}

func (e *NullColumnError) Error() string {
	return fmt.Sprintf(
		"column #%d (%s) is null in row %s", e.Index, e.Name, e.Row,
	)
}

func (e *NullColumnError) Unwrap() error {
	return ErrNullColumn
}
