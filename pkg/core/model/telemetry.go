// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// StepTelemetry is the measured duration of one attempted step.
type StepTelemetry struct {
	Number   int64         `json:"number"`
	Duration time.Duration `json:"durationNs"`
	Success  bool          `json:"success"`
}

// Telemetry summarizes one executor run. StepCount counts attempted
// steps, including a failed one, and Steps holds their durations in
// the execution order.
type Telemetry struct {
	Total     time.Duration   `json:"totalNs"`
	StepCount int             `json:"stepCount"`
	Success   bool            `json:"success"`
	Steps     []StepTelemetry `json:"steps"`
}

// MigrationState describes how a database relates to the steps which
// are known by the running binary.
type MigrationState string

// Supported migration states.
const (
	FreshInstall      MigrationState = "FRESH_INSTALL"
	UpToDate          MigrationState = "UP_TO_DATE"
	RequiresUpgrade   MigrationState = "REQUIRES_UPGRADE"
	RequiresDowngrade MigrationState = "REQUIRES_DOWNGRADE"
)

// MigrationStatus compares the database watermark with the registered
// steps. Watermark is -1 when no step was ever applied.
type MigrationStatus struct {
	State     MigrationState `json:"state"`
	Watermark int64          `json:"watermark"`
	Latest    int64          `json:"latest"`
	Pending   int            `json:"pending"`
}
