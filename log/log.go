// SPDX-FileCopyrightText: Copyright (c) The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package log implements the logger interface used by the mail builder, the attachment
// resolver and the delivery clients.
package log

import (
	"fmt"
	"log/slog"
)

// Level is a type wrapper for an int and represents the verbosity of a Logger
type Level int

const (
	LevelError Level = iota // Only errors are logged
	LevelWarn               // Warnings and errors are logged
	LevelInfo               // Informational messages, warnings and errors are logged
	LevelDebug              // Everything is logged
)

// Component names used by the packages of this module
const (
	ComponentBuilder  = "builder"
	ComponentMessage  = "message"
	ComponentResolver = "resolver"
	ComponentSMTP     = "smtp"
	ComponentSendmail = "sendmail"
	ComponentSES      = "ses"
	ComponentHTTP     = "http"
)

// ComponentString is the attribute/group name used for the component in structured output
const ComponentString = "component"

// Log represents a log message type that holds the name of the emitting Component, a Format
// string and a slice of Messages
type Log struct {
	Component string
	Format    string
	Messages  []interface{}
}

// Logger is the log interface used throughout the module
type Logger interface {
	Debugf(Log)
	Infof(Log)
	Warnf(Log)
	Errorf(Log)
}

// String returns a lower-case name of the Level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Enabled reports whether a Logger configured with l emits messages of the given level
func (l Level) Enabled(level Level) bool {
	return l >= level
}

// slogLevel maps l to the matching slog.Level. Levels above LevelDebug are treated as
// LevelDebug.
func (l Level) slogLevel() slog.Level {
	switch {
	case l <= LevelError:
		return slog.LevelError
	case l == LevelWarn:
		return slog.LevelWarn
	case l == LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// ParseLevel maps a textual level as used in configuration files to a Level. Unknown
// values map to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// componentPrefix returns the bracketed component name used by the Stdlog
func (l Log) componentPrefix() string {
	if l.Component == "" {
		return ""
	}
	return "[" + l.Component + "] "
}

// message renders the Format with its Messages
func (l Log) message() string {
	return fmt.Sprintf(l.Format, l.Messages...)
}
