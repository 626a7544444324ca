// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package container provides the dependency injection container which
// creates the migration steps. Shared services, such as the database
// and the UUID factory, are provided by value and each step is
// provided lazily by its identifier. The Container implements the
// repo.StepResolver interface.
package container

import (
	"context"
	"fmt"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/step"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
	"github.com/samber/do"
)

// Factory creates a step, invoking its dependencies from i.
type Factory func(i *do.Injector) (repo.Step, error)

// Definition describes one migration step and how it is created.
type Definition struct {
	Number      int64
	Description string
	ID          model.StepID
	Factory     Factory
}

// Container resolves the step identifiers to live steps.
type Container struct {
	inj *do.Injector
	ids map[model.StepID]struct{}
}

// Option customizes the services of a Container.
type Option func(inj *do.Injector)

// WithUUIDFactory replaces the random UUID factory.
func WithUUIDFactory(f step.UUIDFactory) Option {
	return func(inj *do.Injector) {
		do.OverrideValue[step.UUIDFactory](inj, f)
	}
}

// New creates a Container which provides db to the steps.
func New(db *database.Database, opts ...Option) *Container {
	inj := do.New()
	do.ProvideValue(inj, db)
	do.ProvideValue[step.UUIDFactory](inj, step.RandomUUIDs{})
	for _, opt := range opts {
		opt(inj)
	}
	return &Container{inj: inj, ids: make(map[model.StepID]struct{})}
}

// Register provides the id step by f. Each id may be registered once.
func (c *Container) Register(id model.StepID, f Factory) error {
	if id == "" || f == nil {
		return cerr.MissingFieldf("step id and factory can't be null")
	}
	if _, ok := c.ids[id]; ok {
		return fmt.Errorf(
			"step %s is already provided: %w", id, cerr.ErrDuplicateKey,
		)
	}
	c.ids[id] = struct{}{}
	do.ProvideNamed(c.inj, string(id), do.Provider[repo.Step](f))
	return nil
}

// RegisterAll registers the factories of defs.
func (c *Container) RegisterAll(defs ...Definition) error {
	for _, d := range defs {
		if err := c.Register(d.ID, d.Factory); err != nil {
			return fmt.Errorf("registering #%d: %w", d.Number, err)
		}
	}
	return nil
}

// Resolve creates the id step. Failures match
// cerr.ErrComponentResolution.
func (c *Container) Resolve(_ context.Context, id model.StepID) (
	repo.Step, error,
) {
	s, err := do.InvokeNamed[repo.Step](c.inj, string(id))
	if err != nil {
		return nil, fmt.Errorf(
			"resolving step %s: %w: %w", id, cerr.ErrComponentResolution, err,
		)
	}
	if s == nil {
		return nil, fmt.Errorf(
			"resolving step %s: %w: nil step", id, cerr.ErrComponentResolution,
		)
	}
	return s, nil
}

// Injector returns the underlying injector, e.g., for providing more
// services to the step factories.
func (c *Container) Injector() *do.Injector {
	return c.inj
}

// Shutdown shuts the provided services down.
func (c *Container) Shutdown() error {
	return c.inj.Shutdown()
}

// Database returns the database of i.
func Database(i *do.Injector) (*database.Database, error) {
	return do.Invoke[*database.Database](i)
}

// UUIDs returns the UUID factory of i.
func UUIDs(i *do.Injector) (step.UUIDFactory, error) {
	return do.Invoke[step.UUIDFactory](i)
}

// Ddl returns a Factory which creates a DdlChange for m.
func Ddl(m step.SchemaMigration) Factory {
	return func(i *do.Injector) (repo.Step, error) {
		db, err := Database(i)
		if err != nil {
			return nil, err
		}
		return step.NewDdlChange(db, m), nil
	}
}

// Data returns a Factory which creates a DataChange for the migration
// which is created by newMigration.
func Data(newMigration func(i *do.Injector) (step.DataMigration, error)) Factory {
	return func(i *do.Injector) (repo.Step, error) {
		db, err := Database(i)
		if err != nil {
			return nil, err
		}
		m, err := newMigration(i)
		if err != nil {
			return nil, err
		}
		return step.NewDataChange(db, m), nil
	}
}

var _ repo.StepResolver = (*Container)(nil)
