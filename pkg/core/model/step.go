// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model contains the migration engine models. Steps are
// described by RegisteredStep values which are collected by a Registry
// and frozen into an ordered Steps view. The RunState keeps progress
// counters of a running executor and Telemetry summarizes one
// executor run.
package model

import (
	"fmt"
	"log/slog"
)

// StepID identifies an executable migration step implementation.
// It is resolved to a live step instance by a dependency injection
// container right before that step is executed.
type StepID string

// RegisteredStep is an immutable description of one migration step.
// Its Number is non-negative and unique in its Registry, and its
// Description is never empty.
type RegisteredStep struct {
	Number      int64  `json:"number"`
	Description string `json:"description"`
	ID          StepID `json:"id"`
}

// String returns the step in the "#number 'description'" format which
// is used by the progress log lines.
func (s RegisteredStep) String() string {
	return fmt.Sprintf("#%d '%s'", s.Number, s.Description)
}

// LogValue implements slog.LogValuer.
func (s RegisteredStep) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("number", s.Number),
		slog.String("description", s.Description),
		slog.String("id", string(s.ID)),
	)
}
