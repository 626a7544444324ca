// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package v1 provides the migration steps of the initial schema which
// holds the webhooks and their deliveries. All steps are reentrant.
package v1

import (
	"context"

	"github.com/momeni/dbmigrate/pkg/adapter/container"
	"github.com/momeni/dbmigrate/pkg/adapter/db/def"
	"github.com/momeni/dbmigrate/pkg/adapter/db/sqlbuild"
	"github.com/momeni/dbmigrate/pkg/adapter/db/step"
)

// Table, column, and index names of the initial schema.
const (
	Webhooks          = "webhooks"
	WebhookDeliveries = "webhook_deliveries"

	WebhooksProjectIndex   = "webhooks_project"
	DeliveriesWebhookIndex = "deliveries_webhook"

	UUIDSize = 40
)

// Steps returns the definitions of the v1 steps.
func Steps() []container.Definition {
	return []container.Definition{
		{
			Number:      1,
			Description: "Create table 'webhooks'",
			ID:          "CreateWebhooksTable",
			Factory:     container.Ddl(step.SchemaMigrationFunc(createWebhooks)),
		},
		{
			Number:      2,
			Description: "Create table 'webhook_deliveries'",
			ID:          "CreateWebhookDeliveriesTable",
			Factory:     container.Ddl(step.SchemaMigrationFunc(createDeliveries)),
		},
		{
			Number:      3,
			Description: "Create index on 'webhooks.project_uuid'",
			ID:          "CreateIndexOnWebhooksProject",
			Factory: container.Ddl(createIndex(
				Webhooks, WebhooksProjectIndex, "project_uuid",
			)),
		},
		{
			Number:      4,
			Description: "Create index on 'webhook_deliveries.webhook_uuid'",
			ID:          "CreateIndexOnDeliveriesWebhook",
			Factory: container.Ddl(createIndex(
				WebhookDeliveries, DeliveriesWebhookIndex, "webhook_uuid",
			)),
		},
	}
}

func createWebhooks(ctx context.Context, c *step.DdlContext) error {
	if ok, err := c.TableExists(ctx, Webhooks); err != nil || ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewCreateTable(c.Dialect(), Webhooks).
		AddPkColumn(def.Varchar("uuid", UUIDSize, def.NotNull())).
		AddColumn(def.Varchar("name", 100, def.NotNull())).
		AddColumn(def.Varchar("url", 2000, def.NotNull())).
		AddColumn(def.Varchar("project_uuid", UUIDSize)).
		AddColumn(def.Varchar("secret", 200)).
		AddColumn(def.BigInt("created_at", def.NotNull())).
		AddColumn(def.BigInt("updated_at")),
	)
}

func createDeliveries(ctx context.Context, c *step.DdlContext) error {
	if ok, err := c.TableExists(ctx, WebhookDeliveries); err != nil || ok {
		return err
	}
	return c.Apply(ctx, sqlbuild.NewCreateTable(c.Dialect(), WebhookDeliveries).
		AddPkColumn(def.Varchar("uuid", UUIDSize, def.NotNull())).
		AddColumn(def.Varchar("webhook_uuid", UUIDSize, def.NotNull())).
		AddColumn(def.Varchar("project_uuid", UUIDSize)).
		AddColumn(def.Boolean("success", def.NotNull())).
		AddColumn(def.Integer("http_status")).
		AddColumn(def.BigInt("duration_ms")).
		AddColumn(def.Clob("payload", def.NotNull())).
		AddColumn(def.Clob("error_stacktrace")).
		AddColumn(def.BigInt("created_at", def.NotNull())),
	)
}

func createIndex(table, index string, columns ...string) step.SchemaMigration {
	return step.SchemaMigrationFunc(
		func(ctx context.Context, c *step.DdlContext) error {
			if ok, err := c.IndexExists(ctx, table, index); err != nil || ok {
				return err
			}
			b := sqlbuild.NewCreateIndex(c.Dialect(), table, index)
			for _, col := range columns {
				b.AddColumn(col)
			}
			return c.Apply(ctx, b)
		},
	)
}
