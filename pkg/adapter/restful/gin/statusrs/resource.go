// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package statusrs realizes the migration status resource, allowing
// operators to watch a running migration and the registered steps.
package statusrs

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

// UseCase is the subset of the migrationuc.MigrateDBUseCase methods
// which is needed by the status resource.
type UseCase interface {
	Status(ctx context.Context) (model.MigrationStatus, error)
	Steps() *model.Steps
	Progress() model.RunProgress
}

type resource struct {
	uc UseCase
}

// Register instantiates a resource adapting the uc use case with the
// REST APIs including:
//  1. GET request to migration/status for the watermark status and the
//     progress of the current (or last) executor run,
//  2. GET request to migration/steps for the registered steps, which
//     may be filtered by the from query param.
func Register(r *gin.RouterGroup, uc UseCase) {
	rs := &resource{uc: uc}
	r.GET("migration/status", rs.GetStatus)
	r.GET("migration/steps", rs.ListSteps)
}

type statusResp struct {
	Status   model.MigrationStatus `json:"status"`
	Progress model.RunProgress     `json:"progress"`
}

func (rs *resource) GetStatus(c *gin.Context) {
	st, err := rs.uc.Status(c)
	if err != nil {
		serdser.SerErr(c, cerr.Unavailable(err))
		return
	}
	c.JSON(http.StatusOK, statusResp{
		Status:   st,
		Progress: rs.uc.Progress(),
	})
}

type listStepsReq struct {
	From *int64 `form:"from" binding:"omitempty,gte=0"`
}

type listStepsResp struct {
	Steps []model.RegisteredStep `json:"steps"`
}

func (rs *resource) ListSteps(c *gin.Context) {
	req := &listStepsReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return
	}
	steps := rs.uc.Steps()
	resp := listStepsResp{}
	if req.From == nil {
		resp.Steps = steps.ReadAll()
	} else {
		resp.Steps = steps.ReadFrom(*req.From)
	}
	c.JSON(http.StatusOK, resp)
}
