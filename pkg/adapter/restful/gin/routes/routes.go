// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes registers all resource packages of the status server.
// Each resource package is named like statusrs and adapts a use case
// to its REST APIs.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin/statusrs"
)

// APIPrefix is the path prefix of the resources.
const APIPrefix = "/api/dbmigrate/v1"

// Register adds the status resource of uc under the APIPrefix and the
// metrics handler, if it is not nil, as /metrics to e.
func Register(e *gin.Engine, uc statusrs.UseCase, metrics http.Handler) {
	statusrs.Register(e.Group(APIPrefix), uc)
	if metrics != nil {
		e.GET("/metrics", gin.WrapH(metrics))
	}
}
