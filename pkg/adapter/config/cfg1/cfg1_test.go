// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/momeni/dbmigrate/pkg/adapter/config/cfg1"
	"github.com/momeni/dbmigrate/pkg/adapter/config/settings"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

const minimal = `
database:
  dialect: sqlite
  url: %s
versions:
  config: 1.0.0
`

func TestLoadFillsDefaults(t *testing.T) {
	c, err := cfg1.Load([]byte(fmt.Sprintf(minimal, "/tmp/x.db")))
	require.NoError(t, err)
	assert.Equal(t, 4, *c.Database.MaxOpenConns)
	assert.Equal(t, 200*time.Millisecond, c.Database.SlowThreshold.Std())
	assert.False(t, *c.Database.LogStatements)
	assert.Equal(t, 250, *c.Migration.BatchSize)
	assert.True(t, *c.Status.GinLogger)
	assert.Empty(t, c.Status.Address)
	assert.Equal(t, "dbmigrate", c.Telemetry.Namespace)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"dialect": `
database:
  dialect: mysql
  url: x
versions:
  config: 1.0.0
`,
		"url": `
database:
  dialect: sqlite
versions:
  config: 1.0.0
`,
		"batch size": `
database:
  dialect: sqlite
  url: x
migration:
  batch-size: 0
versions:
  config: 1.0.0
`,
		"huge batch size": `
database:
  dialect: sqlite
  url: x
migration:
  batch-size: 1000000
versions:
  config: 1.0.0
`,
		"log level": `
database:
  dialect: sqlite
  url: x
log:
  level: loud
versions:
  config: 1.0.0
`,
		"address": `
database:
  dialect: sqlite
  url: x
status:
  address: localhost
versions:
  config: 1.0.0
`,
		"slow threshold": `
database:
  dialect: sqlite
  url: x
  slow-threshold: soon
versions:
  config: 1.0.0
`,
		"single connection": `
database:
  dialect: sqlite
  url: x
  max-open-conns: 1
versions:
  config: 1.0.0
`,
		"namespace": `
database:
  dialect: sqlite
  url: x
telemetry:
  namespace: db-migrate
versions:
  config: 1.0.0
`,
		"two documents": "a: 1\n---\nb: 2\n",
	}
	for name, data := range cases {
		_, err := cfg1.Load([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoadRejectsNewerMinorVersion(t *testing.T) {
	_, err := cfg1.Load([]byte(`
database:
  dialect: sqlite
  url: x
versions:
  config: 1.3.0
`))
	var msve *cerr.MismatchingSemVerError
	require.ErrorAs(t, err, &msve)
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	c, err := cfg1.Load([]byte(fmt.Sprintf(minimal, path)))
	require.NoError(t, err)
	db, pool, err := c.Open(context.Background())
	require.NoError(t, err)
	defer db.Close()
	assert.Same(t, db, pool)
	assert.Equal(t, 250, db.BatchSize)
	assert.Equal(t, "sqlite", db.Dialect.ID())

	prom, err := c.PromSink()
	require.NoError(t, err)
	assert.Len(t, c.TelemetrySinks(prom), 1)
	c.Telemetry.JSONFile = filepath.Join(t.TempDir(), "m.json")
	assert.Len(t, c.TelemetrySinks(prom), 2)
}

func ExampleConfig_Marshal() {
	d := settings.Duration(90 * time.Second)
	n := 100
	c := &cfg1.Config{
		Database: cfg1.Database{
			Dialect:       "postgresql",
			URL:           "postgres://migrator@localhost/sonar",
			SlowThreshold: &d,
		},
		Migration: cfg1.Migration{BatchSize: &n},
		Log:       cfg1.Log{Level: "debug"},
	}
	c.Vers.Versions.Config = cfg1.Version
	b, err := yaml.Marshal(c)
	fmt.Println(err)
	fmt.Print(string(b))
	// Output:
	// <nil>
	// database:
	//     dialect: postgresql
	//     url: postgres://migrator@localhost/sonar
	//     slow-threshold: 1m30s
	// migration:
	//     batch-size: 100
	// status: {}
	// telemetry: {}
	// log:
	//     level: debug
	// versions:
	//     config: 1.0.0
}
