// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"sync"
	"time"
)

// ExecutorState is the state of a steps executor.
type ExecutorState string

// Executors move from NotStarted to Running and then to one of the
// Succeeded or Failed terminal states.
const (
	NotStarted ExecutorState = "NOT_STARTED"
	Running    ExecutorState = "RUNNING"
	Succeeded  ExecutorState = "SUCCEEDED"
	Failed     ExecutorState = "FAILED"
)

// Terminal reports whether s is Succeeded or Failed.
func (s ExecutorState) Terminal() bool {
	return s == Succeeded || s == Failed
}

// RunState holds the progress counters of the current executor run.
// It is updated by the executor and may be read concurrently, e.g., by
// the status HTTP handlers, hence, its fields are guarded by a mutex.
type RunState struct {
	mu        sync.RWMutex
	state     ExecutorState
	total     int
	completed int
	current   *RegisteredStep
	startedAt time.Time
}

// RunProgress is a consistent snapshot of a RunState.
type RunProgress struct {
	State     ExecutorState   `json:"state"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Current   *RegisteredStep `json:"current,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
}

// NewRunState returns a RunState in the NotStarted state.
func NewRunState() *RunState {
	return &RunState{state: NotStarted}
}

// Reset sets the total number of steps which are going to be applied,
// clears the completed counter, and switches to the Running state.
func (rs *RunState) Reset(total int, now time.Time) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.state = Running
	rs.total = total
	rs.completed = 0
	rs.current = nil
	rs.startedAt = now
}

// Start records s as the step which is being executed.
func (rs *RunState) Start(s RegisteredStep) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.current = &s
}

// StepDone increments the completed counter once.
func (rs *RunState) StepDone() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.completed++
	rs.current = nil
}

// Finish moves to the Succeeded or Failed state.
func (rs *RunState) Finish(success bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if success {
		rs.state = Succeeded
	} else {
		rs.state = Failed
	}
}

// Snapshot returns the current progress.
func (rs *RunState) Snapshot() RunProgress {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	p := RunProgress{
		State:     rs.state,
		Total:     rs.total,
		Completed: rs.completed,
		StartedAt: rs.startedAt,
	}
	if rs.current != nil {
		c := *rs.current
		p.Current = &c
	}
	if p.State == "" {
		p.State = NotStarted
	}
	return p
}
