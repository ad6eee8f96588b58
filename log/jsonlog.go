// SPDX-FileCopyrightText: Copyright (c) The go-mail Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"context"
	"io"
	"log/slog"
)

// JSONlog is the structured JSON logger that satisfies the Logger interface. The component
// of a Log is emitted as its own attribute.
type JSONlog struct {
	level  Level
	logger *slog.Logger
}

// NewJSON returns a new JSONlog type that satisfies the Logger interface
func NewJSON(output io.Writer, level Level) *JSONlog {
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level.slogLevel()})
	return &JSONlog{level: level, logger: slog.New(handler)}
}

// Debugf logs the entry with slog.LevelDebug
func (l *JSONlog) Debugf(log Log) { l.logAt(LevelDebug, log) }

// Infof logs the entry with slog.LevelInfo
func (l *JSONlog) Infof(log Log) { l.logAt(LevelInfo, log) }

// Warnf logs the entry with slog.LevelWarn
func (l *JSONlog) Warnf(log Log) { l.logAt(LevelWarn, log) }

// Errorf logs the entry with slog.LevelError
func (l *JSONlog) Errorf(log Log) { l.logAt(LevelError, log) }

func (l *JSONlog) logAt(level Level, entry Log) {
	if !l.level.Enabled(level) {
		return
	}
	var attrs []slog.Attr
	if entry.Component != "" {
		attrs = append(attrs, slog.String(ComponentString, entry.Component))
	}
	l.logger.LogAttrs(context.Background(), level.slogLevel(), entry.message(), attrs...)
}
