// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/log"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// Executor runs migration steps sequentially. Each Executor may run
// once and moves from model.NotStarted to model.Running and finally
// to model.Succeeded or model.Failed.
type Executor struct {
	resolver repo.StepResolver
	*options

	mu    sync.Mutex
	state model.ExecutorState
}

// NewExecutor instantiates an Executor which resolves the steps using
// the r resolver. Optional history, listener, telemetry sinks, run
// state, and clock may be passed as functional options.
func NewExecutor(r repo.StepResolver, opts ...Option) (*Executor, error) {
	if r == nil {
		return nil, errors.New("nil step resolver")
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid option: %w", err)
	}
	return &Executor{resolver: r, options: o, state: model.NotStarted}, nil
}

// State returns the current executor state.
func (e *Executor) State() model.ExecutorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RunState returns the progress counters which are updated by e.
func (e *Executor) RunState() *model.RunState {
	return e.runState
}

func (e *Executor) transit(from, to model.ExecutorState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return fmt.Errorf(
			"executor is %s: %w", e.state, cerr.ErrAlreadyExecuted,
		)
	}
	e.state = to
	return nil
}

// Execute runs steps in the given order. Caller is responsible for
// passing the steps which are not applied yet, sorted by their
// migration numbers. The first failing step stops the execution and
// its error is returned as a *cerr.StepExecutionError. The l listener
// is notified after each successful step and may be nil, so the
// listener which was passed by WithListener is used instead.
func (e *Executor) Execute(
	ctx context.Context, steps []model.RegisteredStep, l repo.Listener,
) error {
	if err := e.transit(model.NotStarted, model.Running); err != nil {
		return err
	}
	if l == nil {
		l = e.listener
	}
	total := len(steps)
	start := e.now()
	e.runState.Reset(total, start)
	log.Info(ctx, fmt.Sprintf("Executing %d DB migrations...", total))

	t := model.Telemetry{Steps: make([]model.StepTelemetry, 0, total)}
	done := 0
	var err error
	for i, s := range steps {
		var d time.Duration
		d, err = e.executeStep(ctx, i+1, total, s)
		t.Steps = append(t.Steps, model.StepTelemetry{
			Number: s.Number, Duration: d, Success: err == nil,
		})
		if err != nil {
			break
		}
		done++
		e.runState.StepDone()
		if l != nil {
			l.OnMigrationStepCompleted(ctx, s)
		}
	}

	t.Total = e.now().Sub(start)
	t.StepCount = len(t.Steps)
	t.Success = err == nil
	status := "success"
	if err != nil {
		status = "failure"
	}
	msg := fmt.Sprintf(
		"Executed %d/%d DB migrations: %s | time=%dms",
		done, total, status, t.Total.Milliseconds(),
	)
	if err != nil {
		log.Error(ctx, msg, log.Err("error", err))
		e.finish(model.Failed)
	} else {
		log.Info(ctx, msg)
		e.finish(model.Succeeded)
	}
	e.publish(ctx, t)
	return err
}

func (e *Executor) finish(s model.ExecutorState) {
	e.runState.Finish(s == model.Succeeded)
	_ = e.transit(model.Running, s)
}

// executeStep resolves and executes the s step, reporting the elapsed
// time too. The i index is 1-based.
func (e *Executor) executeStep(
	ctx context.Context, i, total int, s model.RegisteredStep,
) (time.Duration, error) {
	prefix := fmt.Sprintf("%d/%d %s", i, total, s)
	log.Info(ctx, prefix+"...")
	e.runState.Start(s)
	start := e.now()
	err := e.resolveAndRun(ctx, s)
	d := e.now().Sub(start)
	if err != nil {
		log.Error(
			ctx,
			fmt.Sprintf("%s: failure | time=%dms", prefix, d.Milliseconds()),
			log.Valuer("step", s), log.Err("error", err),
		)
		return d, &cerr.StepExecutionError{
			Number:      s.Number,
			Description: s.Description,
			Err:         err,
		}
	}
	log.Info(
		ctx, fmt.Sprintf("%s: success | time=%dms", prefix, d.Milliseconds()),
	)
	return d, nil
}

func (e *Executor) resolveAndRun(
	ctx context.Context, s model.RegisteredStep,
) (err error) {
	step, err := e.resolver.Resolve(ctx, s.ID)
	if err != nil {
		if !errors.Is(err, cerr.ErrComponentResolution) {
			err = fmt.Errorf("%w: %w", cerr.ErrComponentResolution, err)
		}
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	if err = step.Execute(ctx); err != nil {
		return err
	}
	if e.history != nil {
		if err = e.history.Done(ctx, s); err != nil {
			return fmt.Errorf("recording applied step: %w", err)
		}
	}
	return nil
}

// publish hands t to all telemetry sinks. Sink failures are logged and
// do not change the execution result.
func (e *Executor) publish(ctx context.Context, t model.Telemetry) {
	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, t); err != nil {
			log.Warn(ctx, "cannot publish migration telemetry",
				log.Err("error", err),
			)
		}
	}
}
