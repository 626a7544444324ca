// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/dbmigrate/pkg/core/log"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// MigrateDBUseCase represents the database upgrade use case. It keeps
// the frozen view of all registered steps, the history repository
// which persists the watermark of the applied steps, and a resolver
// for instantiating the steps.
type MigrateDBUseCase struct {
	steps    *model.Steps
	history  repo.History
	resolver repo.StepResolver
	opts     []Option
	runState *model.RunState
}

// NewMigrateDB creates a MigrateDBUseCase instance. The opts functional
// options are passed to each Executor which is created by Migrate, in
// addition to the WithHistory(h) option. A model.RunState is shared
// among those executors, so Progress may report the last run.
// NewMigrateDB only validates its arguments and performs no database
// operation.
func NewMigrateDB(
	steps *model.Steps,
	h repo.History,
	r repo.StepResolver,
	opts ...Option,
) (*MigrateDBUseCase, error) {
	switch {
	case steps == nil:
		return nil, errors.New("nil steps")
	case h == nil:
		return nil, errors.New("nil history")
	case r == nil:
		return nil, errors.New("nil step resolver")
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid option: %w", err)
	}
	if o.history != nil {
		return nil, errors.New("history must be passed as an argument")
	}
	opts = append(opts, WithRunState(o.runState), WithHistory(h))
	return &MigrateDBUseCase{
		steps:    steps,
		history:  h,
		resolver: r,
		opts:     opts,
		runState: o.runState,
	}, nil
}

// Migrate applies all registered steps which their numbers are larger
// than the persisted watermark, in the ascending order. Having no
// pending step is not an error.
func (uc *MigrateDBUseCase) Migrate(ctx context.Context) error {
	if err := uc.history.Start(ctx); err != nil {
		return fmt.Errorf("starting migration history: %w", err)
	}
	w, err := uc.history.LastMigrationNumber(ctx)
	if err != nil {
		return fmt.Errorf("reading migration watermark: %w", err)
	}
	pending := uc.steps.ReadFrom(w + 1)
	log.Debug(ctx, "computed pending migrations",
		slog.Int64("watermark", w), slog.Int("pending", len(pending)),
	)
	e, err := NewExecutor(uc.resolver, uc.opts...)
	if err != nil {
		return fmt.Errorf("creating steps executor: %w", err)
	}
	return e.Execute(ctx, pending, nil)
}

// Status compares the persisted watermark with the registered steps.
func (uc *MigrateDBUseCase) Status(
	ctx context.Context,
) (model.MigrationStatus, error) {
	w, err := uc.history.LastMigrationNumber(ctx)
	if err != nil {
		return model.MigrationStatus{}, fmt.Errorf(
			"reading migration watermark: %w", err,
		)
	}
	ms := model.MigrationStatus{
		Watermark: w,
		Latest:    uc.steps.Last().Number,
		Pending:   len(uc.steps.ReadFrom(w + 1)),
	}
	switch {
	case w < 0:
		ms.State = model.FreshInstall
	case w > ms.Latest:
		ms.State = model.RequiresDowngrade
	case ms.Pending > 0:
		ms.State = model.RequiresUpgrade
	default:
		ms.State = model.UpToDate
	}
	return ms, nil
}

// Steps returns the registered steps.
func (uc *MigrateDBUseCase) Steps() *model.Steps {
	return uc.steps
}

// Progress returns a snapshot of the current or last Migrate call.
func (uc *MigrateDBUseCase) Progress() model.RunProgress {
	return uc.runState.Snapshot()
}
