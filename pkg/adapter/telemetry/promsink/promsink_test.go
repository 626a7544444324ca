// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package promsink_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/promsink"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

var failedRun = model.Telemetry{
	Total:     1500 * time.Millisecond,
	StepCount: 2,
	Success:   false,
	Steps: []model.StepTelemetry{
		{Number: 1, Duration: time.Second, Success: true},
		{Number: 2, Duration: 500 * time.Millisecond, Success: false},
	},
}

func TestPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migration.prom")
	s, err := promsink.New(promsink.WithTextfile(path))
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), failedRun))

	n, err := testutil.GatherAndCount(s.Registry(), "dbmigrate_steps_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(s.Registry(), "dbmigrate_step_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `dbmigrate_runs_total{result="failure"} 1`)
	assert.Contains(t, string(b), "dbmigrate_last_run_duration_seconds 1.5")
	assert.Contains(t, string(b), "dbmigrate_last_run_steps 2")
	assert.Contains(t, string(b), "dbmigrate_last_run_success 0")
}

func TestHandler(t *testing.T) {
	s, err := promsink.New(promsink.WithNamespace("mig"))
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), model.Telemetry{
		Success: true,
	}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mig_runs_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "mig_last_run_success 1")
}

func TestInvalidOptions(t *testing.T) {
	_, err := promsink.New(promsink.WithTextfile(""))
	require.Error(t, err)
	for _, ns := range []string{"db-migrate", "", "9lives", "émigré"} {
		_, err = promsink.New(promsink.WithNamespace(ns))
		require.Error(t, err, ns)
	}
	require.NoError(t, promsink.ValidateNamespace("db_migrate:v1"))
}
