// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands of dbmigrate.
// Commands are organized using the cobra library. All of them read
// the database connection settings from the same config file.
//
//	./dbmigrate migrate [-c /path/of/config.yaml]  # apply pending steps
//	./dbmigrate status [-c /path/of/config.yaml]   # compare watermark
//	./dbmigrate steps [--from N] [-c /path/of/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/momeni/dbmigrate/pkg/adapter/config"
	"github.com/momeni/dbmigrate/pkg/adapter/config/cfg1"
	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/migration"
	"github.com/momeni/dbmigrate/pkg/adapter/db/schemarp"
	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/promsink"
	"github.com/momeni/dbmigrate/pkg/core/usecase/migrationuc"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dbmigrate",
	Short: "Versioned database migration engine",
	Long: `Versioned database migration engine which applies the
registered migration steps, in the ascending order of their numbers,
to a PostgreSQL or SQLite database. Applied steps are recorded in the
schema_migrations table, so each run only executes those steps which
their numbers are larger than the largest recorded one.
Execution stops at the first failing step. Steps which were applied
before the failure are kept, so a later run resumes from the failed
step.`,
	SilenceUsage: true,
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// non-zero if the command fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}

// app holds the components which are instantiated from the config
// file and shared by the sub-commands.
type app struct {
	cfg  *cfg1.Config
	db   *database.Database
	c    *container.Container
	prom *promsink.Sink
	uc   *migrationuc.MigrateDBUseCase
}

// newApp loads the config file, sets up the default logger, connects
// to the database, and registers all migration steps.
func newApp(ctx context.Context) (a *app, err error) {
	a = &app{}
	a.cfg, err = config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = a.cfg.SetupLogger(os.Stderr); err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	db, pool, err := a.cfg.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()
	a.c = container.New(db)
	steps, err := migration.Setup(a.c)
	if err != nil {
		return nil, fmt.Errorf("registering migration steps: %w", err)
	}
	a.prom, err = a.cfg.PromSink()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus sink: %w", err)
	}
	a.uc, err = migrationuc.NewMigrateDB(
		steps, schemarp.New(pool, db.Dialect), a.c,
		migrationuc.WithTelemetrySinks(a.cfg.TelemetrySinks(a.prom)...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migrate use case: %w", err)
	}
	return a, nil
}

// close shuts down the container and closes the database.
func (a *app) close() error {
	var err error
	if a.c != nil {
		err = a.c.Shutdown()
	}
	return errors.Join(err, a.db.Close())
}
