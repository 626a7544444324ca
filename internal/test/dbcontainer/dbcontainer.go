// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer is an internal helper for the test packages.
// It starts a temporary postgres:16 container and connects to it,
// using a *postgres.Pool connection pool, for the integration-level
// test suites which require a real PostgreSQL server.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/postgres"
)

// New starts a postgres container and returns a pool which is
// connected to it, and a Database which shares the pool connections.
// The container runtime is located by the DOCKER_HOST environment
// variable, e.g., unix://$XDG_RUNTIME_DIR/podman/podman.sock, and t is
// skipped if it is not set. The timeout only limits the start up.
// The container is removed when t finishes.
func New(t *testing.T, timeout time.Duration) (
	*postgres.Pool, *database.Database,
) {
	t.Helper()
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("DOCKER_HOST is not set, skipping PostgreSQL tests")
	}
	ctx := context.Background()
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(ctx2, "16")
	require.NoError(t, err, "failed to set up a test database")
	t.Cleanup(func() {
		require.NoError(t, pg.Shutdown(ctx), "failed to shutdown test database")
	})
	u := pg.ConnectionString()
	var pool *postgres.Pool
	for pool == nil {
		pool, err = postgres.NewPool(ctx2, u)
		if postgres.HasSQLState(err, postgres.StartingUp) {
			continue
		}
		var netErr net.Error
		if ctx2.Err() == nil && errors.As(err, &netErr) {
			time.Sleep(100 * time.Millisecond)
			continue // tolerate network errors until a timeout
		}
		require.NoError(t, err, "cannot connect to test database")
	}
	db, err := pool.Database()
	if err != nil {
		_ = pool.Close()
		require.NoError(t, err, "cannot wrap the connections pool")
	}
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "failed to close the connections pool")
	})
	return pool, db
}
