// SPDX-FileCopyrightText: Copyright (c) The go-mail Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"io"
	"log"
)

// stdPrefixes holds the line prefix of every Level, aligned to the same width
var stdPrefixes = [...]string{
	LevelError: "ERROR: ",
	LevelWarn:  " WARN: ",
	LevelInfo:  " INFO: ",
	LevelDebug: "DEBUG: ",
}

// Stdlog is the default logger that satisfies the Logger interface. Every Level writes
// through its own log.Logger so the prefix is placed after the timestamp.
type Stdlog struct {
	level   Level
	loggers [len(stdPrefixes)]*log.Logger
}

// callDepth skips logAt and the exported level method when log.Logger resolves the caller
const callDepth = 3

// New returns a new Stdlog type that satisfies the Logger interface
func New(output io.Writer, level Level) *Stdlog {
	l := &Stdlog{level: level}
	for lvl, prefix := range stdPrefixes {
		l.loggers[lvl] = log.New(output, prefix, log.Lmsgprefix|log.LstdFlags)
	}
	return l
}

// Debugf logs the entry on the debug logger
func (l *Stdlog) Debugf(log Log) { l.logAt(LevelDebug, log) }

// Infof logs the entry on the info logger
func (l *Stdlog) Infof(log Log) { l.logAt(LevelInfo, log) }

// Warnf logs the entry on the warn logger
func (l *Stdlog) Warnf(log Log) { l.logAt(LevelWarn, log) }

// Errorf logs the entry on the error logger
func (l *Stdlog) Errorf(log Log) { l.logAt(LevelError, log) }

func (l *Stdlog) logAt(level Level, entry Log) {
	if !l.level.Enabled(level) {
		return
	}
	_ = l.loggers[level].Output(callDepth, entry.componentPrefix()+entry.message())
}
