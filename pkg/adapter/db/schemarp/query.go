// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"

	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

func tableExists(
	ctx context.Context, q repo.Queryer, d dialect.Dialect,
) (bool, error) {
	rows, err := q.Query(ctx, d.TableExistsSQL(), TableName)
	if err != nil {
		return false, fmt.Errorf("probing %s table: %w", TableName, err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err = rows.Scan(&n); err != nil {
			return false, fmt.Errorf("scanning probe result: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return false, fmt.Errorf("probing %s table: %w", TableName, err)
	}
	return n > 0, nil
}

func loadVersions(ctx context.Context, q repo.Queryer) ([]string, error) {
	rows, err := q.Query(ctx, "SELECT version FROM "+TableName)
	if err != nil {
		return nil, fmt.Errorf("selecting versions: %w", err)
	}
	defer rows.Close()
	var versions []string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		switch v := vals[0].(type) {
		case string:
			versions = append(versions, v)
		case []byte:
			versions = append(versions, string(v))
		default:
			versions = append(versions, fmt.Sprint(v))
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return versions, nil
}

func insertVersion(ctx context.Context, q repo.Queryer, version string) error {
	_, err := q.Exec(ctx, "INSERT INTO "+TableName+" (version) VALUES (?)", version)
	if err != nil {
		return fmt.Errorf("inserting version %s: %w", version, err)
	}
	return nil
}
