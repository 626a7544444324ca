// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jsonsink_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/jsonsink"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

var (
	published = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	telemetry = model.Telemetry{
		Total:     1500 * time.Millisecond,
		StepCount: 1,
		Success:   true,
		Steps: []model.StepTelemetry{
			{Number: 7, Duration: 1500 * time.Millisecond, Success: true},
		},
	}
)

func clock() time.Time { return published }

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migration.json")
	s := jsonsink.NewFile(path).WithClock(clock)
	require.NoError(t, s.Publish(context.Background(), telemetry))
	require.NoError(t, s.Publish(context.Background(), telemetry))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var r jsonsink.Report
	require.NoError(t, json.Unmarshal(b, &r))
	assert.Equal(t, telemetry, r.Telemetry)
	assert.Equal(t, int64(1500), r.TotalMillis)
	assert.True(t, published.Equal(r.PublishedAt))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be removed")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	s := jsonsink.NewWriter(&buf).WithClock(clock)
	require.NoError(t, s.Publish(context.Background(), telemetry))
	require.NoError(t, s.Publish(context.Background(), model.Telemetry{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{
		"totalNs": 1500000000,
		"stepCount": 1,
		"success": true,
		"steps": [{"number": 7, "durationNs": 1500000000, "success": true}],
		"totalMs": 1500,
		"publishedAt": "2024-03-01T10:00:00Z"
	}`, lines[0])
	assert.Contains(t, lines[1], `"success":false`)
}

func TestMissingDirectory(t *testing.T) {
	s := jsonsink.NewFile(filepath.Join(t.TempDir(), "missing", "m.json"))
	require.Error(t, s.Publish(context.Background(), telemetry))
}
