// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package promsink exports the migration telemetry as Prometheus
// metrics. Metrics are kept in a dedicated registry which may be
// served over HTTP or written to a node-exporter textfile after each
// executor run.
package promsink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	prommodel "github.com/prometheus/common/model"

	"github.com/momeni/dbmigrate/pkg/core/model"
	"github.com/momeni/dbmigrate/pkg/core/repo"
)

// DefaultNamespace prefixes the metric names.
const DefaultNamespace = "dbmigrate"

// Sink is a repo.TelemetrySink which records Prometheus metrics.
type Sink struct {
	namespace string
	textfile  string
	registry  *prometheus.Registry

	runs         *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	lastDuration prometheus.Gauge
	lastSteps    prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

// Option customizes a Sink.
type Option func(s *Sink) error

// WithNamespace replaces the DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(s *Sink) error {
		if err := ValidateNamespace(ns); err != nil {
			return err
		}
		s.namespace = ns
		return nil
	}
}

// ValidateNamespace ensures that ns may prefix the metric names under
// the legacy naming rules, which the textfile collectors expect.
func ValidateNamespace(ns string) error {
	if !prommodel.LegacyValidation.IsValidMetricName(ns) {
		return fmt.Errorf("invalid metrics namespace: %q", ns)
	}
	return nil
}

// WithTextfile makes Publish write all metrics to path, in the text
// exposition format, after recording each run.
func WithTextfile(path string) Option {
	return func(s *Sink) error {
		if path == "" {
			return errors.New("empty textfile path")
		}
		s.textfile = path
		return nil
	}
}

// New creates a Sink with a fresh registry.
func New(opts ...Option) (*Sink, error) {
	s := &Sink{namespace: DefaultNamespace}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("promsink option: %w", err)
		}
	}
	ns := s.namespace
	s.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "runs_total",
		Help:      "Number of executor runs by their result",
	}, []string{"result"})
	s.steps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "steps_total",
		Help:      "Number of attempted migration steps by their result",
	}, []string{"result"})
	s.stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "step_duration_seconds",
		Help:      "Duration of migration steps in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"number"})
	s.lastDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "last_run_duration_seconds",
		Help:      "Duration of the last executor run in seconds",
	})
	s.lastSteps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "last_run_steps",
		Help:      "Number of steps which the last executor run attempted",
	})
	s.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "last_run_success",
		Help:      "Whether the last executor run succeeded (1) or not (0)",
	})
	s.registry = prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		s.runs, s.steps, s.stepDuration,
		s.lastDuration, s.lastSteps, s.lastSuccess,
	} {
		if err := s.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return s, nil
}

// Registry returns the registry which holds the metrics of s.
func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the metrics of s.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Publish records t and writes the textfile if one is configured.
func (s *Sink) Publish(_ context.Context, t model.Telemetry) error {
	s.runs.WithLabelValues(result(t.Success)).Inc()
	for _, st := range t.Steps {
		s.steps.WithLabelValues(result(st.Success)).Inc()
		s.stepDuration.WithLabelValues(strconv.FormatInt(st.Number, 10)).
			Observe(st.Duration.Seconds())
	}
	s.lastDuration.Set(t.Total.Seconds())
	s.lastSteps.Set(float64(t.StepCount))
	if t.Success {
		s.lastSuccess.Set(1)
	} else {
		s.lastSuccess.Set(0)
	}
	if s.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.textfile, s.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", s.textfile, err)
	}
	return nil
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

var _ repo.TelemetrySink = (*Sink)(nil)
