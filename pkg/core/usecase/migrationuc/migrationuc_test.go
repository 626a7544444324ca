// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// recorder is a slog.Handler which keeps the handled records, so the
// emitted log lines can be verified verbatim.
type recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *recorder) Enabled(context.Context, slog.Level) bool {
	return true
}

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler {
	return r
}

func (r *recorder) WithGroup(string) slog.Handler {
	return r
}

// lines returns the messages of records with level >= Info, prefixed
// by their level names.
func (r *recorder) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ll []string
	for _, rec := range r.records {
		if rec.Level < slog.LevelInfo {
			continue
		}
		ll = append(ll, rec.Level.String()+" "+rec.Message)
	}
	return ll
}

func recordLogs(t *testing.T) *recorder {
	r := &recorder{}
	old := slog.Default()
	slog.SetDefault(slog.New(r))
	t.Cleanup(func() {
		slog.SetDefault(old)
	})
	return r
}

// tickingClock returns a clock which advances 5ms per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(5 * time.Millisecond)
		return t
	}
}

type fakeResolver map[model.StepID]repo.Step

func (fr fakeResolver) Resolve(
	_ context.Context, id model.StepID,
) (repo.Step, error) {
	s, ok := fr[id]
	if !ok {
		return nil, fmt.Errorf("no step is registered as %q", id)
	}
	return s, nil
}

type fakeHistory struct {
	watermark int64
	started   int
	done      []int64
	failDone  error
}

func (fh *fakeHistory) Start(context.Context) error {
	fh.started++
	return nil
}

func (fh *fakeHistory) LastMigrationNumber(context.Context) (int64, error) {
	return fh.watermark, nil
}

func (fh *fakeHistory) Done(_ context.Context, s model.RegisteredStep) error {
	if fh.failDone != nil {
		return fh.failDone
	}
	fh.done = append(fh.done, s.Number)
	fh.watermark = s.Number
	return nil
}

type fakeSink struct {
	published []model.Telemetry
	err       error
}

func (fs *fakeSink) Publish(_ context.Context, t model.Telemetry) error {
	fs.published = append(fs.published, t)
	return fs.err
}

type completions []int64

func (c *completions) listener() repo.Listener {
	return repo.ListenerFunc(
		func(_ context.Context, s model.RegisteredStep) {
			*c = append(*c, s.Number)
		},
	)
}

var errBoom = errors.New("boom")

func buildSteps(numbers ...int64) []model.RegisteredStep {
	steps := make([]model.RegisteredStep, 0, len(numbers))
	for _, n := range numbers {
		steps = append(steps, model.RegisteredStep{
			Number:      n,
			Description: fmt.Sprintf("step %d", n),
			ID:          model.StepID(fmt.Sprintf("Step%d", n)),
		})
	}
	return steps
}
