// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo declares the interfaces which the migration use cases
// need from the adapters layer. Use cases depend on these interfaces
// alone, so the steps, their container, the migration history table,
// and the telemetry sinks can be replaced independently.
package repo

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/core/model"
)

// Step is one executable migration step. Execute is called at most
// once per executor run and must release all of its resources before
// returning, regardless of its success.
type Step interface {
	Execute(ctx context.Context) error
}

// StepFunc adapts a function to the Step interface.
type StepFunc func(ctx context.Context) error

// Execute calls f(ctx).
func (f StepFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// StepResolver creates a live Step instance for a registered step
// identifier. Failures must be reported as cerr.ErrComponentResolution.
type StepResolver interface {
	Resolve(ctx context.Context, id model.StepID) (Step, error)
}

// Listener is notified whenever a migration step completes
// successfully.
type Listener interface {
	OnMigrationStepCompleted(ctx context.Context, s model.RegisteredStep)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, s model.RegisteredStep)

// OnMigrationStepCompleted calls f(ctx, s).
func (f ListenerFunc) OnMigrationStepCompleted(
	ctx context.Context, s model.RegisteredStep,
) {
	f(ctx, s)
}
