// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"fmt"
	"log"
	"strings"
)

const (
	// LevelAll enables all logs.
	LevelAll = iota
	// LevelDebug is used for allocator lifecycle tracing.
	LevelDebug
	// LevelInfo is the default logging priority.
	LevelInfo
	// LevelWarn reports suspicious but non-fatal conditions, e.g. blocks
	// still outstanding at teardown.
	LevelWarn
	// LevelError reports unrecoverable conditions.
	LevelError
	// LevelNone disables all logs.
	LevelNone
)

// Logger defines the log interface consumed by xalloc.
type Logger interface {
	SetLevel(lvl int)
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// DefaultLogger is used by all xalloc packages unless replaced
// with SetLogger.
var DefaultLogger Logger = &logger{level: LevelInfo}

// SetLogger replaces the default logger.
func SetLogger(l Logger) {
	DefaultLogger = l
}

// SetLevel sets the default logger's priority.
func SetLevel(lvl int) {
	switch lvl {
	case LevelAll, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelNone:
		DefaultLogger.SetLevel(lvl)
	default:
		log.Printf("invalid log level: %v", lvl)
	}
}

// ParseLevel maps a level name from a config file to a level value.
func ParseLevel(name string) (int, error) {
	switch strings.ToLower(name) {
	case "all":
		return LevelAll, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off":
		return LevelNone, nil
	}
	return LevelNone, fmt.Errorf("unknown log level %q", name)
}

type logger struct {
	level int
}

// SetLevel sets logs priority.
func (l *logger) SetLevel(lvl int) {
	switch lvl {
	case LevelAll, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelNone:
		l.level = lvl
	default:
		log.Printf("invalid log level: %v", lvl)
	}
}

func (l *logger) Debug(format string, v ...interface{}) {
	if LevelDebug >= l.level {
		log.Printf("[DBG] "+format+"\n", v...)
	}
}

func (l *logger) Info(format string, v ...interface{}) {
	if LevelInfo >= l.level {
		log.Printf("[INF] "+format+"\n", v...)
	}
}

func (l *logger) Warn(format string, v ...interface{}) {
	if LevelWarn >= l.level {
		log.Printf("[WRN] "+format+"\n", v...)
	}
}

func (l *logger) Error(format string, v ...interface{}) {
	if LevelError >= l.level {
		log.Printf("[ERR] "+format+"\n", v...)
	}
}

// Debug uses DefaultLogger to log a message at LevelDebug.
func Debug(format string, v ...interface{}) {
	if DefaultLogger != nil {
		DefaultLogger.Debug(format, v...)
	}
}

// Info uses DefaultLogger to log a message at LevelInfo.
func Info(format string, v ...interface{}) {
	if DefaultLogger != nil {
		DefaultLogger.Info(format, v...)
	}
}

// Warn uses DefaultLogger to log a message at LevelWarn.
func Warn(format string, v ...interface{}) {
	if DefaultLogger != nil {
		DefaultLogger.Warn(format, v...)
	}
}

// Error uses DefaultLogger to log a message at LevelError.
func Error(format string, v ...interface{}) {
	if DefaultLogger != nil {
		DefaultLogger.Error(format, v...)
	}
}
