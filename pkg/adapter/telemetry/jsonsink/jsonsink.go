// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jsonsink writes the telemetry of each executor run as a JSON
// report, either into a file which is replaced atomically or into an
// arbitrary writer.
package jsonsink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// Report is the JSON document of one executor run.
type Report struct {
	model.Telemetry
	TotalMillis int64     `json:"totalMs"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Sink is a repo.TelemetrySink which writes Report documents.
type Sink struct {
	mu   sync.Mutex
	path string
	w    io.Writer
	now  func() time.Time
}

// NewFile creates a Sink which replaces the path file by each report.
func NewFile(path string) *Sink {
	return &Sink{path: path, now: time.Now}
}

// NewWriter creates a Sink which writes one report per line into w.
func NewWriter(w io.Writer) *Sink {
	return &Sink{w: w, now: time.Now}
}

// WithClock replaces the clock which stamps the reports.
func (s *Sink) WithClock(now func() time.Time) *Sink {
	s.now = now
	return s
}

// Publish writes the report of t.
func (s *Sink) Publish(_ context.Context, t model.Telemetry) error {
	r := Report{
		Telemetry:   t,
		TotalMillis: t.Total.Milliseconds(),
		PublishedAt: s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != nil {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshalling telemetry: %w", err)
		}
		if _, err = s.w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		return nil
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling telemetry: %w", err)
	}
	return writeFile(s.path, b)
}

// writeFile replaces path with b through a temporary file in the same
// directory, so readers never observe a partial report.
func writeFile(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".telemetry-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err = f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming to %q: %w", path, err)
	}
	return nil
}

var _ repo.TelemetrySink = (*Sink)(nil)
