// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsInvalidSteps(t *testing.T) {
	cases := []struct {
		name   string
		number int64
		desc   string
		id     model.StepID
		err    error
	}{
		{"negative number", -1, "foo", "Foo", cerr.ErrValidation},
		{"empty description", 1, "", "Foo", cerr.ErrValidation},
		{"missing step", 1, "foo", "", cerr.ErrMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := model.NewRegistry()
			err := r.Add(tc.number, tc.desc, tc.id)
			require.ErrorIs(t, err, tc.err)
			assert.ErrorIs(t, err, cerr.ErrConfiguration)
			assert.Equal(t, cerr.Configuration, cerr.KindOf(err))
			assert.Zero(t, r.Len())
		})
	}
}

func TestAddZeroIsAccepted(t *testing.T) {
	r := model.NewRegistry()
	require.NoError(t, r.Add(0, "initial", "Initial"))
	steps, err := r.Build()
	require.NoError(t, err)
	assert.Equal(t, int64(0), steps.Last().Number)
}

func TestAddDuplicateNamesTheNumber(t *testing.T) {
	r := model.NewRegistry()
	require.NoError(t, r.Add(12, "foo", "Foo"))
	require.NoError(t, r.Add(13, "bar", "Bar"))
	err := r.Add(12, "baz", "Baz")
	require.ErrorIs(t, err, cerr.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "12")
	var dne *cerr.DuplicateNumberError
	require.True(t, errors.As(err, &dne))
	assert.Equal(t, int64(12), dne.Number)
	assert.Equal(t, 2, r.Len(), "duplicate must not replace the first step")
}

func TestBuildEmptyRegistry(t *testing.T) {
	_, err := model.NewRegistry().Build()
	require.ErrorIs(t, err, cerr.ErrEmptyRegistry)
	_, err = (&model.Registry{}).Build()
	require.ErrorIs(t, err, cerr.ErrEmptyRegistry)
}

func TestBuildOrdersAscendingRegardlessOfInsertion(t *testing.T) {
	numbers := []int64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144}
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 10; round++ {
		shuffled := append([]int64(nil), numbers...)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		r := model.NewRegistry()
		for _, n := range shuffled {
			require.NoError(t, r.Add(n, "step", "Step"))
		}
		steps, err := r.Build()
		require.NoError(t, err)
		assert.Equal(t, numbers, stepNumbers(steps.ReadAll()))
	}
}

func TestReadFrom(t *testing.T) {
	r := model.NewRegistry()
	for _, n := range []int64{40, 10, 30, 20} {
		require.NoError(t, r.Add(n, "step", "Step"))
	}
	steps, err := r.Build()
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20, 30, 40}, stepNumbers(steps.ReadFrom(0)))
	assert.Equal(t, []int64{20, 30, 40}, stepNumbers(steps.ReadFrom(20)))
	assert.Equal(t, []int64{30, 40}, stepNumbers(steps.ReadFrom(21)))
	assert.Equal(t, []int64{40}, stepNumbers(steps.ReadFrom(40)))
	assert.Empty(t, steps.ReadFrom(41))
	assert.Equal(t, 4, steps.Len())
}

func TestBuildIsAFrozenView(t *testing.T) {
	r := model.NewRegistry()
	require.NoError(t, r.Add(1, "one", "One"))
	steps, err := r.Build()
	require.NoError(t, err)
	require.NoError(t, r.Add(2, "two", "Two"))
	all := steps.ReadAll()
	all[0].Number = 100
	assert.Equal(t, []int64{1}, stepNumbers(steps.ReadAll()))
}

func TestRegisterVersions(t *testing.T) {
	r := model.NewRegistry()
	v1 := versionFunc(func(r *model.Registry) error {
		return r.Add(1, "one", "One")
	})
	v2 := versionFunc(func(r *model.Registry) error {
		return r.Add(1, "again", "Again")
	})
	err := model.RegisterVersions(r, v1, v2)
	require.ErrorIs(t, err, cerr.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "version #1")
}

type versionFunc func(r *model.Registry) error

func (f versionFunc) Addition(r *model.Registry) error {
	return f(r)
}

func stepNumbers(steps []model.RegisteredStep) []int64 {
	numbers := make([]int64, 0, len(steps))
	for _, s := range steps {
		numbers = append(numbers, s.Number)
	}
	return numbers
}
