// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbmigrate/pkg/core/model"
)

func TestSemVer(t *testing.T) {
	var sv model.SemVer
	require.NoError(t, sv.UnmarshalText([]byte("1.2.3")))
	assert.Equal(t, model.SemVer{1, 2, 3}, sv)
	assert.Equal(t, "1.2.3", sv.String())

	require.NoError(t, sv.UnmarshalText([]byte("2")))
	assert.Equal(t, model.SemVer{2, 0, 0}, sv)

	require.Error(t, sv.UnmarshalText([]byte("1.x.0")))
	require.Error(t, sv.UnmarshalText([]byte("1.-2.0")))
	require.Error(t, sv.UnmarshalText([]byte("1.2.3.4")))
	assert.Equal(t, model.SemVer{2, 0, 0}, sv, "failures must not change sv")
}

func TestSemVerCompatible(t *testing.T) {
	v := model.SemVer{1, 2, 0}
	assert.True(t, v.Compatible(model.SemVer{1, 0, 9}))
	assert.True(t, v.Compatible(model.SemVer{1, 2, 5}))
	assert.False(t, v.Compatible(model.SemVer{1, 3, 0}))
	assert.False(t, v.Compatible(model.SemVer{2, 0, 0}))
}
