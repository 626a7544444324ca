// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files and lets the dbmigrate command instantiate its components,
// such as the database handle and telemetry sinks, from the loaded
// settings. The settings are versioned and each format version is
// maintained by its own sub-package.
package config

import (
	"fmt"
	"os"

	"github.com/momeni/dbmigrate/pkg/adapter/config/cfg1"
	"github.com/momeni/dbmigrate/pkg/adapter/config/vers"
)

// Load loads, validates, and normalizes the path configuration file.
// The file must conform with the latest known settings format.
func Load(path string) (*cfg1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	v, err := vers.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	if err = v.Validate(cfg1.Version); err != nil {
		return nil, err
	}
	c, err := cfg1.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading cfg1.Config: %w", err)
	}
	return c, nil
}
