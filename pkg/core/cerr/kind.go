// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error condition of the migration engine.
type Kind int

// These constants enumerate the supported error kinds.
const (
	// Configuration errors are detected while steps are registered or
	// prepared. They are fatal and must never be retried.
	Configuration Kind = iota + 1

	// Resolution errors indicate that no step instance could be
	// obtained for a registered step identifier.
	Resolution

	// Execution errors are returned by a step while it is running.
	Execution

	// RowContext errors wrap a failure which happened while a specific
	// row of a query result was processed.
	RowContext
)

// String returns the lower-case name of k.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Resolution:
		return "resolution"
	case Execution:
		return "execution"
	case RowContext:
		return "row-context"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// sentinel is a named error which may belong to a broader parent
// error, so errors.Is matches both of them.
type sentinel struct {
	msg    string
	parent error
}

func (s *sentinel) Error() string {
	return s.msg
}

func (s *sentinel) Unwrap() error {
	return s.parent
}

// These sentinel errors may be matched with errors.Is.
// The first group belongs to the Configuration kind and all of them
// match ErrConfiguration too.
var (
	ErrConfiguration   = errors.New("invalid configuration")
	ErrValidation      = &sentinel{"validation failed", ErrConfiguration}
	ErrMissingField    = &sentinel{"missing field", ErrConfiguration}
	ErrDuplicateKey    = &sentinel{"duplicate key", ErrConfiguration}
	ErrEmptyRegistry   = &sentinel{"empty registry", ErrConfiguration}
	ErrAlreadyExecuted = &sentinel{"already executed", ErrConfiguration}

	ErrComponentResolution = errors.New("component resolution failed")
	ErrExecution           = errors.New("migration step failed")
	ErrRowContext          = errors.New("row processing failed")
	ErrNullColumn          = errors.New("unexpected null column")
	ErrMissingParameter    = errors.New("missing statement parameter")
)

// DetailedError replaces the message of a sentinel error, keeping it
// detectable by errors.Is.
type DetailedError struct {
	Msg string
	Err error
}

func (e *DetailedError) Error() string {
	return e.Msg
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// Validationf formats a message for an ErrValidation error.
func Validationf(format string, args ...any) error {
	return &DetailedError{Msg: fmt.Sprintf(format, args...), Err: ErrValidation}
}

// MissingFieldf formats a message for an ErrMissingField error.
func MissingFieldf(format string, args ...any) error {
	return &DetailedError{Msg: fmt.Sprintf(format, args...), Err: ErrMissingField}
}

// Configurationf formats a message for an ErrConfiguration error.
func Configurationf(format string, args ...any) error {
	return &DetailedError{
		Msg: fmt.Sprintf(format, args...), Err: ErrConfiguration,
	}
}

// KindOf returns the kind of err, or zero if err belongs to none of
// the known kinds. A row-context error which is wrapped by a step
// execution error is reported as an execution error, while a failed
// step resolution remains a resolution error after wrapping.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrComponentResolution):
		return Resolution
	case errors.Is(err, ErrExecution):
		return Execution
	case errors.Is(err, ErrRowContext):
		return RowContext
	case errors.Is(err, ErrConfiguration):
		return Configuration
	default:
		return 0
	}
}
