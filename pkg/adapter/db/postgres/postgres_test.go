// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/momeni/dbmigrate/internal/test/dbcontainer"
	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/migration"
	"github.com/momeni/dbmigrate/pkg/adapter/db/postgres"
	"github.com/momeni/dbmigrate/pkg/adapter/db/schemarp"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
	"github.com/momeni/dbmigrate/pkg/core/usecase/migrationuc"
)

type IntegrationPostgresTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	DB   *database.Database
}

func TestIntegrationPostgresTestSuite(t *testing.T) {
	pool, db := dbcontainer.New(t, 60*time.Second)
	suite.Run(t, &IntegrationPostgresTestSuite{
		Ctx:  context.Background(),
		Pool: pool,
		DB:   db,
	})
}

func (ipts *IntegrationPostgresTestSuite) count(q string) int64 {
	var n int64
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) error {
		rows, err := c.Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			return errors.New("no row")
		}
		return rows.Scan(&n)
	})
	ipts.Require().NoError(err, q)
	return n
}

func (ipts *IntegrationPostgresTestSuite) TestUndefinedTable() {
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, "DELETE FROM missing_table")
		return err
	})
	ipts.True(postgres.HasSQLState(err, postgres.UndefinedTable), err)
}

func (ipts *IntegrationPostgresTestSuite) TestTxRollsBackOnPanic() {
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := c.Exec(ctx, "CREATE TABLE IF NOT EXISTS t (id BIGINT)"); err != nil {
			return err
		}
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if _, err := tx.Exec(ctx, "INSERT INTO t VALUES (?)", 1); err != nil {
				return err
			}
			panic("boom")
		})
	})
	ipts.ErrorContains(err, "panicked: boom")
	ipts.Equal(int64(0), ipts.count("SELECT COUNT(*) FROM t"))
}

func (ipts *IntegrationPostgresTestSuite) TestMigrate() {
	c := container.New(ipts.DB)
	steps, err := migration.Setup(c)
	ipts.Require().NoError(err)
	uc, err := migrationuc.NewMigrateDB(
		steps, schemarp.New(ipts.Pool, ipts.DB.Dialect), c,
	)
	ipts.Require().NoError(err)

	st, err := uc.Status(ipts.Ctx)
	ipts.Require().NoError(err)
	ipts.Equal(model.FreshInstall, st.State)

	ipts.Require().NoError(uc.Migrate(ipts.Ctx))
	ipts.Require().NoError(uc.Migrate(ipts.Ctx))

	st, err = uc.Status(ipts.Ctx)
	ipts.Require().NoError(err)
	ipts.Equal(model.UpToDate, st.State)
	ipts.Equal(int64(steps.Len()), ipts.count("SELECT COUNT(*) FROM schema_migrations"))
	ipts.Equal(int64(1), ipts.count(`SELECT COUNT(*) FROM pg_indexes
		WHERE indexname = 'webhooks_project_name'`))

	for _, s := range steps.ReadAll() {
		step, err := c.Resolve(ipts.Ctx, s.ID)
		ipts.Require().NoError(err)
		ipts.Require().NoError(step.Execute(ipts.Ctx), "rerunning %s", s)
	}
}
