// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Supported output formats of Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a level name, such as debug or warn, to its
// slog.Level. Names are case-insensitive and an empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return l, nil
}

// NewHandler creates a text or json slog.Handler writing into w.
// Records with a level lower than level are dropped.
func NewHandler(w io.Writer, level, format string) (slog.Handler, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{AddSource: l <= slog.LevelDebug, Level: l}
	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.NewTextHandler(w, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// Setup replaces the default logger by one which uses NewHandler.
func Setup(w io.Writer, level, format string) error {
	h, err := NewHandler(w, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))
	return nil
}
