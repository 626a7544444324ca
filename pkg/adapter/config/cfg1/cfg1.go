// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 loads the configuration settings with version 1.x.y.
// All known minor and patch versions with the same major version are
// loaded by one implementation. When writing the settings out, the
// latest known minor and patch version is used because the older
// versions ignore the extra fields.
package cfg1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/momeni/dbmigrate/pkg/adapter/config/settings"
	"github.com/momeni/dbmigrate/pkg/adapter/config/vers"
	"github.com/momeni/dbmigrate/pkg/adapter/db/database"
	"github.com/momeni/dbmigrate/pkg/adapter/db/dialect"
	"github.com/momeni/dbmigrate/pkg/adapter/db/postgres"
	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/jsonsink"
	"github.com/momeni/dbmigrate/pkg/adapter/telemetry/promsink"
	"github.com/momeni/dbmigrate/pkg/core/log"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// Default values of the optional settings.
const (
	DefaultMaxOpenConns = 4
	DefaultLogLevel     = "info"
	DefaultLogFormat    = log.FormatText

	MaxBatchSize = 100000
)

// Config contains all settings of the v1.x.y format. It only uses the
// primitive types or the types which are defined locally, so the file
// format is kept intact while other layers change freely.
type Config struct {
	Database  Database  `yaml:"database"`
	Migration Migration `yaml:"migration"`
	Status    Status    `yaml:"status"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`

	Vers vers.Config `yaml:",inline"`
}

// Database contains the connection settings of the migrated database.
type Database struct {
	// Dialect is the name of a supported dialect, see dialect.IDs.
	Dialect string `yaml:"dialect" validate:"required,oneof=postgresql sqlite"`

	// URL is a PostgreSQL connection URL, or a file path for SQLite.
	URL string `yaml:"url" validate:"required"`

	MaxOpenConns  *int               `yaml:"max-open-conns,omitempty" validate:"omitempty,gte=2"`
	SlowThreshold *settings.Duration `yaml:"slow-threshold,omitempty"`
	LogStatements *bool              `yaml:"log-statements,omitempty"`
}

// Migration contains the settings of the migration steps.
type Migration struct {
	// BatchSize is the number of rows which are written and committed
	// together by the mass updates.
	BatchSize *int `yaml:"batch-size,omitempty" validate:"omitempty,gte=1"`
}

// Status contains the status HTTP server settings. The server is not
// started if Address is empty.
type Status struct {
	Address   string `yaml:"address,omitempty"`
	GinLogger *bool  `yaml:"gin-logger,omitempty"`
}

// Telemetry contains the settings of the telemetry sinks. Each file
// sink is disabled when its path is empty.
type Telemetry struct {
	Namespace      string `yaml:"namespace,omitempty"`
	PrometheusFile string `yaml:"prometheus-file,omitempty"`
	JSONFile       string `yaml:"json-file,omitempty"`
}

// Log contains the default logger settings.
type Log struct {
	Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// Load decodes data, which must hold a single YAML mapping, and then
// validates and normalizes the decoded settings.
func Load(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateAndNormalize validates the settings and fills the missing
// optional settings with their default values.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Version); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := settings.VerifyRange(c.Migration.BatchSize, 1, MaxBatchSize); err != nil {
		return fmt.Errorf("migration.batch-size: %w", err)
	}
	if a := c.Status.Address; a != "" {
		if _, _, err := net.SplitHostPort(a); err != nil {
			return fmt.Errorf("status.address: %w", err)
		}
	}
	settings.Default(&c.Database.MaxOpenConns, DefaultMaxOpenConns)
	settings.Default(
		&c.Database.SlowThreshold,
		settings.Duration(postgres.DefaultSlowThreshold),
	)
	settings.Nil2Zero(&c.Database.LogStatements)
	settings.Default(&c.Migration.BatchSize, database.DefaultBatchSize)
	settings.Default(&c.Status.GinLogger, true)
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = promsink.DefaultNamespace
	}
	if err := promsink.ValidateNamespace(c.Telemetry.Namespace); err != nil {
		return fmt.Errorf("telemetry.namespace: %w", err)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	return nil
}

// Marshalled is the YAML form of Config. Its fields match the Config
// fields, except that the versions are replaced by their strings.
type Marshalled struct {
	Database  Database  `yaml:"database"`
	Migration Migration `yaml:"migration"`
	Status    Status    `yaml:"status"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`

	Vers *vers.Marshalled `yaml:",inline"`
}

// MarshalYAML returns the Marshalled form of c, so it is encoded
// instead of c.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Marshal(), nil
}

// Marshal creates the Marshalled form of c.
func (c *Config) Marshal() *Marshalled {
	return &Marshalled{
		Database:  c.Database,
		Migration: c.Migration,
		Status:    c.Status,
		Telemetry: c.Telemetry,
		Log:       c.Log,
		Vers:      c.Vers.Marshal(),
	}
}

// SetupLogger makes the default logger write into w with the level and
// format settings of c.
func (c *Config) SetupLogger(w io.Writer) error {
	return log.Setup(w, c.Log.Level, c.Log.Format)
}

// Open connects to the configured database. The returned pool keeps
// the migration history and shares its connections with the returned
// Database, so closing the Database releases both of them.
func (c *Config) Open(ctx context.Context) (
	*database.Database, repo.Pool, error,
) {
	opts := []database.Option{
		database.WithBatchSize(*c.Migration.BatchSize),
	}
	switch c.Database.Dialect {
	case dialect.SQLite:
		db, err := database.OpenSQLite(ctx, c.Database.URL, opts...)
		if err != nil {
			return nil, nil, err
		}
		db.DB.SetMaxOpenConns(*c.Database.MaxOpenConns)
		return db, db, nil
	case dialect.PostgreSQL:
		popts := []postgres.PoolOption{
			postgres.WithSlowThreshold(c.Database.SlowThreshold.Std()),
		}
		if *c.Database.LogStatements {
			popts = append(popts, postgres.WithStatementsLog())
		}
		p, err := postgres.NewPool(ctx, c.Database.URL, popts...)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres.NewPool: %w", err)
		}
		db, err := p.Database(opts...)
		if err != nil {
			return nil, nil, errors.Join(err, p.Close())
		}
		db.DB.SetMaxOpenConns(*c.Database.MaxOpenConns)
		db.DB.SetConnMaxIdleTime(5 * time.Minute)
		return db, p, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dialect %q", c.Database.Dialect)
	}
}

// PromSink creates the Prometheus telemetry sink. It is always created
// for serving the /metrics endpoint, while its textfile is only
// written if one is configured.
func (c *Config) PromSink() (*promsink.Sink, error) {
	opts := []promsink.Option{promsink.WithNamespace(c.Telemetry.Namespace)}
	if f := c.Telemetry.PrometheusFile; f != "" {
		opts = append(opts, promsink.WithTextfile(f))
	}
	return promsink.New(opts...)
}

// TelemetrySinks returns prom and the JSON file sink, if configured,
// as the receivers of the executor runs telemetry.
func (c *Config) TelemetrySinks(prom *promsink.Sink) []repo.TelemetrySink {
	sinks := []repo.TelemetrySink{prom}
	if f := c.Telemetry.JSONFile; f != "" {
		sinks = append(sinks, jsonsink.NewFile(f))
	}
	return sinks
}
