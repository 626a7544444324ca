// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"slices"
	"sort"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Registry accumulates migration steps which are contributed by the
// DbVersion providers. A Registry is not safe for concurrent use and
// is expected to be filled once during the boot and then frozen by
// its Build method.
type Registry struct {
	steps map[int64]RegisteredStep
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[int64]RegisteredStep)}
}

// Add registers a migration step. It fails with ErrValidation when
// number is negative or description is empty, with ErrMissingField
// when id is empty, and with a *cerr.DuplicateNumberError (matching
// ErrDuplicateKey) when number is already registered.
func (r *Registry) Add(
	number int64, description string, id StepID,
) error {
	if number < 0 {
		return cerr.Validationf(
			"Migration number must be >= 0, got %d", number,
		)
	}
	if id == "" {
		return cerr.MissingFieldf(
			"Step of migration #%d can't be null", number,
		)
	}
	if description == "" {
		return cerr.Validationf(
			"Description of migration #%d can't be empty", number,
		)
	}
	if r.steps == nil {
		r.steps = make(map[int64]RegisteredStep)
	}
	if _, found := r.steps[number]; found {
		return &cerr.DuplicateNumberError{Number: number}
	}
	r.steps[number] = RegisteredStep{
		Number:      number,
		Description: description,
		ID:          id,
	}
	return nil
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Build freezes the registered steps into an ascending Steps view.
// The Registry may be reused afterwards and later additions will not
// be visible in the returned view.
func (r *Registry) Build() (*Steps, error) {
	if len(r.steps) == 0 {
		return nil, cerr.ErrEmptyRegistry
	}
	ss := make([]RegisteredStep, 0, len(r.steps))
	for _, s := range r.steps {
		ss = append(ss, s)
	}
	sort.Slice(ss, func(i, j int) bool {
		return ss[i].Number < ss[j].Number
	})
	return &Steps{steps: ss}, nil
}

// Steps is an immutable view of registered steps, sorted by their
// migration numbers in the ascending order.
type Steps struct {
	steps []RegisteredStep
}

// ReadAll returns all steps in the ascending order. The returned slice
// is a copy and may be modified by the caller.
func (s *Steps) ReadAll() []RegisteredStep {
	return slices.Clone(s.steps)
}

// ReadFrom returns those steps which their number is at least n.
// An empty slice is returned if n exceeds the largest number.
func (s *Steps) ReadFrom(n int64) []RegisteredStep {
	i := sort.Search(len(s.steps), func(i int) bool {
		return s.steps[i].Number >= n
	})
	return slices.Clone(s.steps[i:])
}

// Len returns the number of steps.
func (s *Steps) Len() int {
	return len(s.steps)
}

// Last returns the step with the largest migration number.
func (s *Steps) Last() RegisteredStep {
	return s.steps[len(s.steps)-1]
}

// DbVersion is implemented by the version providers. Each provider
// contributes a contiguous range of migration numbers.
type DbVersion interface {
	Addition(r *Registry) error
}

// RegisterVersions invokes the Addition method of each of versions,
// in the given order, and stops at the first error.
func RegisterVersions(r *Registry, versions ...DbVersion) error {
	for i, v := range versions {
		if err := v.Addition(r); err != nil {
			return fmt.Errorf("registering version #%d: %w", i, err)
		}
	}
	return nil
}
