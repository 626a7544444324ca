// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"github.com/google/uuid"
)

// UUIDFactory generates the identifiers of new rows. It is injected
// into the data steps, so tests may replace it with a predictable one.
type UUIDFactory interface {
	Create() string
}

// RandomUUIDs creates version 4 UUIDs.
type RandomUUIDs struct{}

// Create returns a new random UUID in its canonical form.
func (RandomUUIDs) Create() string {
	return uuid.NewString()
}

// SequentialUUIDs creates UUIDs from a counter, so the generated
// values are predictable.
type SequentialUUIDs struct {
	n uint64
}

// Create returns the next UUID of the sequence.
func (s *SequentialUUIDs) Create() string {
	s.n++
	var u uuid.UUID
	for i := 0; i < 8; i++ {
		u[15-i] = byte(s.n >> (8 * i))
	}
	return u.String()
}
