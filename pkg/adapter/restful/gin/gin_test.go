// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/momeni/dbmigrate/internal/test/dbtest"
	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/migration"
	"github.com/momeni/dbmigrate/pkg/adapter/db/schemarp"
	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin"
	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin/routes"
	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/promsink"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/usecase/migrationuc"
)

type GinTestSuite struct {
	suite.Suite

	Ctx context.Context
	UC  *migrationuc.MigrateDBUseCase
	Gin *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, &GinTestSuite{Ctx: context.Background()})
}

func (gts *GinTestSuite) SetupTest() {
	db := dbtest.New(gts.T())
	c := container.New(db)
	steps, err := migration.Setup(c)
	gts.Require().NoError(err)
	prom, err := promsink.New()
	gts.Require().NoError(err)
	gts.UC, err = migrationuc.NewMigrateDB(
		steps, schemarp.New(db, db.Dialect), c,
		migrationuc.WithTelemetrySinks(prom),
	)
	gts.Require().NoError(err)

	gts.Gin = gin.NewEngine(true)
	routes.Register(gts.Gin, gts.UC, prom.Handler())
}

func (gts *GinTestSuite) get(path string, res any) int {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	gts.Require().NoError(err, "cannot create GET request")
	gts.Gin.ServeHTTP(w, req)
	if res != nil {
		gts.Require().NoError(json.Unmarshal(w.Body.Bytes(), res), w.Body.String())
	}
	return w.Code
}

type statusResp struct {
	Status   model.MigrationStatus
	Progress model.RunProgress
}

func (gts *GinTestSuite) TestStatus() {
	res := &statusResp{}
	gts.Equal(http.StatusOK, gts.get(routes.APIPrefix+"/migration/status", res))
	gts.Equal(model.FreshInstall, res.Status.State)
	gts.Equal(int64(-1), res.Status.Watermark)
	gts.Equal(model.NotStarted, res.Progress.State)

	gts.Require().NoError(gts.UC.Migrate(gts.Ctx))

	res = &statusResp{}
	gts.Equal(http.StatusOK, gts.get(routes.APIPrefix+"/migration/status", res))
	gts.Equal(model.UpToDate, res.Status.State)
	gts.Equal(res.Status.Latest, res.Status.Watermark)
	gts.Equal(model.Succeeded, res.Progress.State)
	gts.Equal(res.Progress.Total, res.Progress.Completed)
	gts.Nil(res.Progress.Current)
}

func (gts *GinTestSuite) TestSteps() {
	res := &struct{ Steps []model.RegisteredStep }{}
	gts.Equal(http.StatusOK, gts.get(routes.APIPrefix+"/migration/steps", res))
	gts.Equal(gts.UC.Steps().ReadAll(), res.Steps)

	res.Steps = nil
	gts.Equal(http.StatusOK, gts.get(routes.APIPrefix+"/migration/steps?from=100", res))
	gts.Require().NotEmpty(res.Steps)
	gts.Equal(int64(100), res.Steps[0].Number)

	errs := map[string][]string{}
	gts.Equal(http.StatusBadRequest, gts.get(routes.APIPrefix+"/migration/steps?from=-1", &errs))
	gts.Require().Len(errs["From"], 1)
	gts.Contains(errs["From"][0], "failed on the 'gte' tag")

	detail := &struct{ Detail string }{}
	gts.Equal(http.StatusBadRequest, gts.get(routes.APIPrefix+"/migration/steps?from=x", detail))
	gts.NotEmpty(detail.Detail)
}

func (gts *GinTestSuite) TestMetrics() {
	gts.Require().NoError(gts.UC.Migrate(gts.Ctx))
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	gts.Require().NoError(err)
	gts.Gin.ServeHTTP(w, req)
	gts.Equal(http.StatusOK, w.Code)
	gts.Contains(w.Body.String(), `dbmigrate_runs_total{result="success"} 1`)
}

type brokenUseCase struct {
	*migrationuc.MigrateDBUseCase
}

func (brokenUseCase) Status(context.Context) (model.MigrationStatus, error) {
	return model.MigrationStatus{}, errors.New("connection refused")
}

func (gts *GinTestSuite) TestStatusUnavailable() {
	gts.Gin = gin.NewEngine(false)
	routes.Register(gts.Gin, brokenUseCase{gts.UC}, nil)
	detail := &struct{ Detail string }{}
	gts.Equal(
		http.StatusServiceUnavailable,
		gts.get(routes.APIPrefix+"/migration/status", detail),
	)
	gts.Equal("connection refused", detail.Detail)
	gts.Equal(http.StatusNotFound, gts.get("/metrics", nil))
}
