// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package v2 provides the migration steps which let webhooks be
// disabled, move the failed deliveries into their own table, and
// replace the project index of webhooks with a unique one.
package v2

import (
	"context"

	"github.com/samber/do"

	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	v1 "github.com/momeni/dbmigrate/pkg/adapter/db/migration/v1"
	"github.com/momeni/dbmigrate/pkg/adapter/db/sqlbuild"
	"github.com/momeni/dbmigrate/pkg/adapter/db/step"
)

// Table, column, and index names which are introduced by v2.
const (
	DeliveryFailures = "webhook_delivery_failures"

	EnabledColumn = "enabled"

	ProjectNameIndex = "webhooks_project_name"
)

// Steps returns the definitions of the v2 steps.
func Steps() []container.Definition {
	return []container.Definition{
		{
			Number:      100,
			Description: "Add column 'enabled' to 'webhooks'",
			ID:          "AddEnabledToWebhooks",
			Factory:     container.Ddl(step.SchemaMigrationFunc(addEnabled)),
		},
		{
			Number:      101,
			Description: "Populate column 'webhooks.enabled'",
			ID:          "PopulateWebhooksEnabled",
			Factory: container.Data(func(*do.Injector) (step.DataMigration, error) {
				return step.DataMigrationFunc(populateEnabled), nil
			}),
		},
		{
			Number:      102,
			Description: "Create table 'webhook_delivery_failures'",
			ID:          "CreateWebhookDeliveryFailuresTable",
			Factory:     container.Ddl(step.SchemaMigrationFunc(createFailures)),
		},
		{
			Number:      103,
			Description: "Move failed deliveries to 'webhook_delivery_failures'",
			ID:          "ArchiveFailedDeliveries",
			Factory:     container.Data(newArchiveFailedDeliveries),
		},
		{
			Number:      104,
			Description: "Drop index 'webhooks_project'",
			ID:          "DropIndexOnWebhooksProject",
			Factory:     container.Ddl(step.SchemaMigrationFunc(dropProjectIndex)),
		},
		{
			Number:      105,
			Description: "Create unique index on 'webhooks.project_uuid, name'",
			ID:          "CreateUniqueIndexOnWebhooksProjectName",
			Factory:     container.Ddl(step.SchemaMigrationFunc(createProjectNameIndex)),
		},
	}
}

func addEnabled(ctx context.Context, c *step.DdlContext) error {
	ok, err := c.ColumnExists(ctx, v1.Webhooks, EnabledColumn)
	if err != nil || ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewAddColumns(c.Dialect(), v1.Webhooks).
		AddColumn(def.Boolean(EnabledColumn)),
	)
}

// populateEnabled enables those webhooks which have a non-empty url.
func populateEnabled(ctx context.Context, c *step.Context) error {
	mu := c.PrepareMassUpdate()
	mu.Select("SELECT uuid, url FROM webhooks WHERE enabled IS NULL")
	mu.Update("UPDATE webhooks SET enabled = ? WHERE uuid = ?")
	return mu.Execute(ctx, func(r *step.Row, u *step.Upsert) (bool, error) {
		id, err := r.GetString(1)
		if err != nil {
			return false, err
		}
		url, err := r.GetNullableString(2)
		if err != nil {
			return false, err
		}
		u.SetBoolean(1, url != nil && *url != "")
		u.SetString(2, id)
		return true, nil
	})
}

func createFailures(ctx context.Context, c *step.DdlContext) error {
	if ok, err := c.TableExists(ctx, DeliveryFailures); err != nil || ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewCreateTable(c.Dialect(), DeliveryFailures).
		AddPkColumn(def.Varchar("uuid", v1.UUIDSize, def.NotNull())).
		AddColumn(def.Varchar("delivery_uuid", v1.UUIDSize, def.NotNull())).
		AddColumn(def.Varchar("webhook_uuid", v1.UUIDSize, def.NotNull())).
		AddColumn(def.Integer("http_status")).
		AddColumn(def.Clob("error_stacktrace")).
		AddColumn(def.BigInt("created_at", def.NotNull())),
	)
}

// archiveFailedDeliveries copies each failed delivery into the failures
// table under a fresh uuid and deletes it from the deliveries table,
// both in the same batch.
type archiveFailedDeliveries struct {
	uuids step.UUIDFactory
}

func newArchiveFailedDeliveries(i *do.Injector) (step.DataMigration, error) {
	uuids, err := container.UUIDs(i)
	if err != nil {
		return nil, err
	}
	return &archiveFailedDeliveries{uuids: uuids}, nil
}

func (a *archiveFailedDeliveries) Apply(ctx context.Context, c *step.Context) error {
	mu := c.PrepareMassUpdate()
	mu.Select(`SELECT uuid, webhook_uuid, http_status, error_stacktrace, created_at
FROM webhook_deliveries WHERE success = ? ORDER BY created_at`).SetBoolean(1, false)
	mu.Update(`INSERT INTO webhook_delivery_failures
(uuid, delivery_uuid, webhook_uuid, http_status, error_stacktrace, created_at)
VALUES (?, ?, ?, ?, ?, ?)`)
	mu.Update("DELETE FROM webhook_deliveries WHERE uuid = ?")
	return mu.ExecuteMulti(ctx, func(r *step.Row, u *step.Upsert, index int) (bool, error) {
		id, err := r.GetString(1)
		if err != nil {
			return false, err
		}
		if index == 1 {
			u.SetString(1, id)
			return true, nil
		}
		webhook, err := r.GetString(2)
		if err != nil {
			return false, err
		}
		status, err := r.GetNullableInt(3)
		if err != nil {
			return false, err
		}
		stacktrace, err := r.GetNullableString(4)
		if err != nil {
			return false, err
		}
		createdAt, err := r.GetLong(5)
		if err != nil {
			return false, err
		}
		u.SetString(1, a.uuids.Create()).
			SetString(2, id).
			SetString(3, webhook).
			SetNullableInt(4, status).
			SetNullableString(5, stacktrace).
			SetLong(6, createdAt)
		return true, nil
	})
}

func dropProjectIndex(ctx context.Context, c *step.DdlContext) error {
	ok, err := c.IndexExists(ctx, v1.Webhooks, v1.WebhooksProjectIndex)
	if err != nil || !ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewDropIndex(
		c.Dialect(), v1.Webhooks, v1.WebhooksProjectIndex,
	))
}

func createProjectNameIndex(ctx context.Context, c *step.DdlContext) error {
	ok, err := c.IndexExists(ctx, v1.Webhooks, ProjectNameIndex)
	if err != nil || ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewCreateIndex(
		c.Dialect(), v1.Webhooks, ProjectNameIndex,
	).Unique().AddColumn("project_uuid").AddColumn("name"))
}
