// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package container_test

import (
	"context"
	"errors"
	"testing"

	"github.com/momeni/dbmigrate/internal/test/dbtest"
	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/step"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/repo"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	c := container.New(db, container.WithUUIDFactory(&step.SequentialUUIDs{}))

	var created string
	require.NoError(t, c.Register("CreateItems", func(i *do.Injector) (repo.Step, error) {
		uuids, err := container.UUIDs(i)
		if err != nil {
			return nil, err
		}
		created = uuids.Create()
		return repo.StepFunc(func(context.Context) error { return nil }), nil
	}))
	require.NoError(t, c.Register("CreateIndex", container.Ddl(
		step.SchemaMigrationFunc(func(ctx context.Context, c *step.DdlContext) error {
			return c.Execute(ctx, "CREATE TABLE t (id BIGINT)")
		}),
	)))

	s, err := c.Resolve(ctx, "CreateItems")
	require.NoError(t, err)
	require.NoError(t, s.Execute(ctx))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", created)

	s, err = c.Resolve(ctx, "CreateIndex")
	require.NoError(t, err)
	require.IsType(t, &step.DdlChange{}, s)
	require.NoError(t, s.Execute(ctx))

	_, err = c.Resolve(ctx, "Missing")
	require.ErrorIs(t, err, cerr.ErrComponentResolution)
	assert.Equal(t, cerr.Resolution, cerr.KindOf(err))

	err = c.Register("CreateItems", container.Ddl(nil))
	require.ErrorIs(t, err, cerr.ErrDuplicateKey)
	require.ErrorIs(t, c.Register("", nil), cerr.ErrMissingField)
}

func TestResolveFailingFactory(t *testing.T) {
	c := container.New(dbtest.New(t))
	boom := errors.New("boom")
	require.NoError(t, c.RegisterAll(container.Definition{
		Number: 1, Description: "fails", ID: "Failing",
		Factory: func(*do.Injector) (repo.Step, error) { return nil, boom },
	}))
	_, err := c.Resolve(context.Background(), "Failing")
	require.ErrorIs(t, err, cerr.ErrComponentResolution)
	assert.Contains(t, err.Error(), boom.Error())
}
