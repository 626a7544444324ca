// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/adapter/config"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

func TestLoadSampleConfig(t *testing.T) {
	c, err := config.Load("../../../configs/sample-config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "postgresql", c.Database.Dialect)
	assert.Equal(t, 200*time.Millisecond, c.Database.SlowThreshold.Std())
	assert.Equal(t, 250, *c.Migration.BatchSize)
	assert.Equal(t, ":9000", c.Status.Address)
	assert.Equal(t, "/var/lib/dbmigrate/migration.json", c.Telemetry.JSONFile)
}

func TestLoadRejectsOtherMajorVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  dialect: sqlite
  url: x
versions:
  config: 2.0.0
`), 0o600))
	_, err := config.Load(path)
	var msve *cerr.MismatchingSemVerError
	require.ErrorAs(t, err, &msve)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
