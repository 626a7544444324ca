// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers parses the versions section of the configuration files.
// The config format version is read before the remaining settings, so
// the matching format package can be chosen for decoding them.
// The database schema is not versioned here because its applied steps
// are tracked by the migration history table.
package vers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

// Config holds the versions section. It is embedded inline by the
// config format structs.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions lists the versioned aspects of a configuration file.
type Versions struct {
	Config model.SemVer `yaml:"config"`
}

// Marshalled is the YAML form of Config, with its SemVer fields
// replaced by strings. Nested structs cannot provide their own
// MarshalYAML replacements, so parent Marshal methods embed this one.
type Marshalled struct {
	Versions struct {
		Config string `yaml:"config"`
	} `yaml:"versions"`
}

// Marshal creates the Marshalled form of vc.
func (vc *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Versions.Config = vc.Versions.Config.Marshal()
	return m
}

// Load decodes the versions section of data, ignoring other fields.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate returns a *cerr.MismatchingSemVerError if the config format
// version of vc cannot be read by an implementation of the expected
// version, i.e., it has another major version or a newer minor one.
func (vc *Config) Validate(expected model.SemVer) error {
	v := vc.Versions.Config
	if !expected.Compatible(v) {
		return fmt.Errorf(
			"unsupported config version: %w",
			&cerr.MismatchingSemVerError{Expected: expected, Actual: v},
		)
	}
	return nil
}
