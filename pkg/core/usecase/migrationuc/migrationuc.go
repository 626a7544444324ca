// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migrationuc provides the database migration use cases.
// The Executor runs an ordered list of registered migration steps,
// one at a time, resolving each of them through a repo.StepResolver.
// It stops at the first failing step, logs the progress lines which
// operators parse from upgrade logs, notifies a listener per completed
// step, and publishes one telemetry record per run.
// The MigrateDBUseCase drives an Executor with those steps which are
// not applied yet, as indicated by the persisted watermark, and also
// reports how a database relates to the registered steps.
package migrationuc

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// Option is a functional option for the Executor and MigrateDBUseCase.
type Option func(o *options) error

type options struct {
	history  repo.History
	listener repo.Listener
	sinks    []repo.TelemetrySink
	runState *model.RunState
	now      func() time.Time
}

func newOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.runState == nil {
		o.runState = model.NewRunState()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// WithHistory makes the Executor record each successfully executed
// step in the h history repository, right after its execution.
func WithHistory(h repo.History) Option {
	return func(o *options) error {
		if h == nil {
			return errors.New("nil history")
		}
		if o.history != nil {
			return errors.New("history is already configured")
		}
		o.history = h
		return nil
	}
}

// WithListener configures the listener which is notified after each
// completed step. Listeners passed to Executor.Execute take precedence.
func WithListener(l repo.Listener) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("nil listener")
		}
		o.listener = l
		return nil
	}
}

// WithTelemetrySinks appends sinks to the list of telemetry sinks.
func WithTelemetrySinks(sinks ...repo.TelemetrySink) Option {
	return func(o *options) error {
		for i, s := range sinks {
			if s == nil {
				return fmt.Errorf("sink #%d is nil", i)
			}
		}
		o.sinks = append(o.sinks, sinks...)
		return nil
	}
}

// WithRunState shares rs with the caller, so progress can be observed
// while steps are running.
func WithRunState(rs *model.RunState) Option {
	return func(o *options) error {
		if rs == nil {
			return errors.New("nil run state")
		}
		o.runState = rs
		return nil
	}
}

// WithClock replaces time.Now for measuring the elapsed times.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.New("nil clock")
		}
		o.now = now
		return nil
	}
}
