// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/adapter/config/vers"
	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
)

func TestLoadAndValidate(t *testing.T) {
	vc, err := vers.Load([]byte("database:\n  url: x\nversions:\n  config: 1.0.2\n"))
	require.NoError(t, err)
	assert.Equal(t, model.SemVer{1, 0, 2}, vc.Versions.Config)
	require.NoError(t, vc.Validate(model.SemVer{1, 1, 0}))

	err = vc.Validate(model.SemVer{2, 0, 0})
	var msve *cerr.MismatchingSemVerError
	require.ErrorAs(t, err, &msve)
	assert.Equal(t, [3]uint{1, 0, 2}, msve.Actual)
	assert.ErrorIs(t, err, cerr.ErrConfiguration)
	assert.Equal(t, "unsupported config version: expected v2.0.0, but got v1.0.2", err.Error())
}

func TestLoadRejectsBadVersion(t *testing.T) {
	_, err := vers.Load([]byte("versions:\n  config: one\n"))
	require.Error(t, err)
}
