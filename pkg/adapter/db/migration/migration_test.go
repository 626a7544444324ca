// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/internal/test/dbtest"
	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/migration"
	"github.com/momeni/dbmigrate/pkg/adapter/db/schemarp"
	"github.com/momeni/dbmigrate/pkg/adapter/db/step"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/usecase/migrationuc"
)

func TestVersionsAreOrdered(t *testing.T) {
	c := container.New(dbtest.New(t))
	steps, err := migration.Setup(c)
	require.NoError(t, err)

	var last int64 = -1
	total := 0
	for _, v := range migration.Versions() {
		for _, d := range v.Steps {
			assert.Greater(t, d.Number, last, "version %s", v.Name)
			last = d.Number
			total++
		}
	}
	assert.Equal(t, total, steps.Len())
	assert.Equal(t, int64(105), steps.Last().Number)
}

func TestSetupRejectsDuplicates(t *testing.T) {
	c := container.New(dbtest.New(t))
	vs := migration.Versions()
	_, err := migration.Setup(c, vs[0], vs[0])
	require.ErrorIs(t, err, cerr.ErrDuplicateKey)
	var dne *cerr.DuplicateNumberError
	require.ErrorAs(t, err, &dne)
	assert.Equal(t, int64(1), dne.Number)
}

func migrate(
	t *testing.T, db *database.Database, versions ...migration.Version,
) *container.Container {
	t.Helper()
	c := container.New(db, container.WithUUIDFactory(&step.SequentialUUIDs{}))
	steps, err := migration.Setup(c, versions...)
	require.NoError(t, err)
	uc, err := migrationuc.NewMigrateDB(
		steps, schemarp.New(db, db.Dialect), c,
	)
	require.NoError(t, err)
	require.NoError(t, uc.Migrate(context.Background()))
	return c
}

func TestMigrateAllVersions(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	migrate(t, db, migration.Versions()[0])

	dbtest.Exec(t, db,
		`INSERT INTO webhooks (uuid, name, url, project_uuid, created_at)
		VALUES ('w1', 'build', 'http://ci', 'p1', 1),
			('w2', 'empty', '', 'p1', 2)`,
		`INSERT INTO webhook_deliveries
		(uuid, webhook_uuid, success, http_status, payload, error_stacktrace, created_at)
		VALUES ('d1', 'w1', true, 200, '{}', NULL, 10),
			('d2', 'w1', false, 500, '{}', 'boom', 11),
			('d3', 'w2', false, NULL, '{}', 'timeout', 12)`,
	)

	c := migrate(t, db)

	assert.Equal(t, int64(1), dbtest.Count(t, db,
		"SELECT COUNT(*) FROM webhooks WHERE enabled = ?", true))
	assert.Equal(t, int64(1), dbtest.Count(t, db,
		"SELECT COUNT(*) FROM webhooks WHERE enabled = ?", false))
	assert.Equal(t, int64(1), dbtest.Count(t, db,
		"SELECT COUNT(*) FROM webhook_deliveries"))
	assert.Equal(t, int64(1), dbtest.Count(t, db,
		`SELECT COUNT(*) FROM webhook_delivery_failures
		WHERE uuid = '00000000-0000-0000-0000-000000000001'
		AND delivery_uuid = 'd2' AND http_status = 500`))
	assert.Equal(t, int64(1), dbtest.Count(t, db,
		`SELECT COUNT(*) FROM webhook_delivery_failures
		WHERE delivery_uuid = 'd3' AND http_status IS NULL
		AND error_stacktrace = 'timeout'`))

	history := schemarp.New(db, db.Dialect)
	n, err := history.LastMigrationNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(105), n)

	// every step must be a no-op when it runs again
	for _, v := range migration.Versions() {
		for _, d := range v.Steps {
			st, err := c.Resolve(ctx, d.ID)
			require.NoError(t, err)
			require.NoError(t, st.Execute(ctx), "step #%d", d.Number)
		}
	}
	assert.Equal(t, int64(2), dbtest.Count(t, db,
		"SELECT COUNT(*) FROM webhook_delivery_failures"))
	assert.Equal(t, int64(2), dbtest.Count(t, db,
		"SELECT COUNT(*) FROM webhooks"))
	assert.Equal(t, int64(0), dbtest.Count(t, db,
		`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'index' AND name = 'webhooks_project'`))
	assert.Equal(t, int64(1), dbtest.Count(t, db,
		`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'index' AND name = 'webhooks_project_name'`))

	_, err = db.DB.Exec(
		`INSERT INTO webhooks (uuid, name, url, project_uuid, created_at)
		VALUES ('w3', 'build', 'http://ci', 'p1', 3)`,
	)
	assert.Error(t, err, "project and name must be unique")
}

func TestMigrateUpToDate(t *testing.T) {
	db := dbtest.New(t)
	migrate(t, db)
	migrate(t, db)

	c := container.New(db)
	steps, err := migration.Setup(c)
	require.NoError(t, err)
	uc, err := migrationuc.NewMigrateDB(steps, schemarp.New(db, db.Dialect), c)
	require.NoError(t, err)
	st, err := uc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.UpToDate, st.State)
}
