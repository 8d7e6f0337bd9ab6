package model

import (
	"fmt"
	"time"
)

const (
	LevelError   = "ERROR"
	LevelWarning = "WARNING"
	LevelInfo    = "INFO"
	LevelDebug   = "DEBUG"
)

// Log data types recognised by the execution summary.
const (
	LogTypeQuery    = "query"
	LogTypeCacheHit = "cacheHit"
)

type LogData struct {
	Type     string   `json:"type,omitempty"`
	Hits     int      `json:"hits,omitempty"`
	APIName  string   `json:"api_name,omitempty"`
	APINames []string `json:"api_names,omitempty"`
}

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	Data      *LogData  `json:"data,omitempty"`
}

func NewLog(level, code, format string, args ...any) LogEntry {
	return LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
	}
}

func Info(format string, args ...any) LogEntry {
	return NewLog(LevelInfo, "", format, args...)
}

func Warning(format string, args ...any) LogEntry {
	return NewLog(LevelWarning, "", format, args...)
}

func Error(code, format string, args ...any) LogEntry {
	return NewLog(LevelError, code, format, args...)
}

func Debug(format string, args ...any) LogEntry {
	return NewLog(LevelDebug, "", format, args...)
}
