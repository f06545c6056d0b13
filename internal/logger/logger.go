package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	l     *log.Logger
	level Level
}

func New(l *log.Logger) *Logger {
	return &Logger{l: l, level: LevelInfo}
}

// WithLevel returns a copy that drops messages below level.
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{l: l.l, level: level}
}

// Discard is a logger for tests.
func Discard() *Logger {
	return New(log.New(io.Discard, "", 0))
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.print(LevelError, "[Error]", format, v...)
}

func (l *Logger) LogWarn(format string, v ...any) {
	l.print(LevelWarn, "[Warn]", format, v...)
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.print(LevelInfo, "[Info]", format, v...)
}

func (l *Logger) LogDebug(format string, v ...any) {
	l.print(LevelDebug, "[Debug]", format, v...)
}

func (l *Logger) print(level Level, tag, format string, v ...any) {
	if l == nil || level < l.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.l.Printf("%s: %s\n", tag, msg)
}
