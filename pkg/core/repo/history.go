// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/core/model"
)

// History persists the watermark of applied migration steps.
type History interface {
	// Start prepares the history storage, e.g., by creating its table
	// when it is missing. It is idempotent.
	Start(ctx context.Context) error

	// LastMigrationNumber returns the largest applied migration number
	// or -1 if no step was applied yet.
	LastMigrationNumber(ctx context.Context) (int64, error)

	// Done records s as an applied step.
	Done(ctx context.Context, s model.RegisteredStep) error
}

// TelemetrySink receives the telemetry of each executor run.
type TelemetrySink interface {
	Publish(ctx context.Context, t model.Telemetry) error
}
