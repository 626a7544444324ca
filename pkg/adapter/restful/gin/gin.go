// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine which serves the read-only
// migration status endpoints. Its access and panic logs are written
// through the default slog logger.
package gin

import (
	"log/slog"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// NewEngine creates an engine in the release mode which recovers from
// panics and, if accessLog is true, logs the served requests.
func NewEngine(accessLog bool) *Engine {
	gin.SetMode(gin.ReleaseMode)
	if accessLog {
		return New(Logger(), Recovery())
	}
	return New(Recovery())
}

func Logger() HandlerFunc {
	return logger.New(slog.Default())
}

func Recovery() HandlerFunc {
	return recovery.New(slog.Default())
}
