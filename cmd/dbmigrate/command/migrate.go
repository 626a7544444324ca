// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin"
	"github.com/momeni/dbmigrate/pkg/adapter/restful/gin/routes"
	"github.com/momeni/dbmigrate/pkg/core/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the pending migration steps",
	Long: `Apply the pending migration steps, i.e., those registered
steps which their numbers are larger than the largest number in the
schema_migrations table, in the ascending order of their numbers.
A fresh database receives all steps. Nothing is done if the database
is up to date. If status.address is configured, the migration status
and metrics are served over HTTP while the steps are executed.
Interrupting the command cancels the running step.`,
	RunE: migrate,
	Args: cobra.NoArgs,
}

var shutdownTimeout = 5 * time.Second

func migrate(_ *cobra.Command, _ []string) (err error) {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close())
	}()
	if addr := a.cfg.Status.Address; addr != "" {
		srv := a.statusServer(addr)
		defer func() {
			sctx, cancel := context.WithTimeout(
				context.Background(), shutdownTimeout,
			)
			defer cancel()
			if serr := srv.Shutdown(sctx); serr != nil {
				log.Warn(ctx, "status server shutdown", log.Err("err", serr))
			}
		}()
	}
	if err = a.uc.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating DB: %w", err)
	}
	return nil
}

// statusServer starts serving the status routes on addr in the
// background.
func (a *app) statusServer(addr string) *http.Server {
	e := gin.NewEngine(*a.cfg.Status.GinLogger)
	routes.Register(e, a.uc, a.prom.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info(context.Background(), "serving migration status",
			slog.String("address", addr),
		)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "status server failed",
				log.Err("err", err),
			)
		}
	}()
	return srv
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
