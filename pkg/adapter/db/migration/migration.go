// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migration collects the migration steps of all database
// versions. Each version package contributes a contiguous range of
// step numbers and the factories which create those steps. The Setup
// function registers them into a model.Registry and a Container, so
// the registered step identifiers can be resolved by the executor.
package migration

import (
	"fmt"

	"github.com/momeni/dbmigrate/pkg/adapter/container"
	v1 "github.com/momeni/dbmigrate/pkg/adapter/db/migration/v1"
	v2 "github.com/momeni/dbmigrate/pkg/adapter/db/migration/v2"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

// Version is a database version which is described by its steps.
type Version struct {
	Name  string
	Steps []container.Definition
}

// Addition registers the steps of v into r.
func (v Version) Addition(r *model.Registry) error {
	for _, d := range v.Steps {
		if err := r.Add(d.Number, d.Description, d.ID); err != nil {
			return fmt.Errorf("version %s: %w", v.Name, err)
		}
	}
	return nil
}

var _ model.DbVersion = Version{}

// Versions returns all database versions in their ascending order.
func Versions() []Version {
	return []Version{
		{Name: "v1", Steps: v1.Steps()},
		{Name: "v2", Steps: v2.Steps()},
	}
}

// Setup registers the steps of versions into a fresh registry and
// their factories into c, returning the frozen steps. All Versions()
// are used if no version is given.
func Setup(c *container.Container, versions ...Version) (*model.Steps, error) {
	if len(versions) == 0 {
		versions = Versions()
	}
	r := model.NewRegistry()
	dbvs := make([]model.DbVersion, 0, len(versions))
	for _, v := range versions {
		dbvs = append(dbvs, v)
	}
	if err := model.RegisterVersions(r, dbvs...); err != nil {
		return nil, err
	}
	for _, v := range versions {
		if err := c.RegisterAll(v.Steps...); err != nil {
			return nil, fmt.Errorf("version %s: %w", v.Name, err)
		}
	}
	steps, err := r.Build()
	if err != nil {
		return nil, fmt.Errorf("building steps: %w", err)
	}
	return steps, nil
}
