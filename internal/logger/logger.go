package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// log level.
func ParseLevel(name string) (log.Level, error) {
	level, err := log.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// RuleFired logs a pattern rule converting typed or pasted syntax
func (l *Logger) RuleFired(rule, origin string, pos int) {
	l.Debug("rule fired",
		"rule", rule,
		"origin", origin,
		"pos", pos)
}

// Promoted logs a corrective follow-up transaction
func (l *Logger) Promoted(promotion string, pos int) {
	l.Debug("promoted",
		"promotion", promotion,
		"pos", pos)
}

// Degraded logs an image node falling back to plain text
func (l *Logger) Degraded(nodeID, text string, pos int) {
	l.Debug("image degraded to text",
		"node", nodeID,
		"text", text,
		"pos", pos)
}

// TransactionRejected logs a transaction that failed to apply
func (l *Logger) TransactionRejected(origin string, err error) {
	l.Warn("transaction rejected",
		"origin", origin,
		"error", err)
}

// DocumentSaved logs a successful save
func (l *Logger) DocumentSaved(path string, bytes int) {
	l.Info("document saved",
		"path", path,
		"bytes", bytes)
}

// SaveFailed logs a failed save
func (l *Logger) SaveFailed(path string, err error) {
	l.Error("save failed",
		"path", path,
		"error", err)
}

// ImageIngested logs an image copied into the document's assets
func (l *Logger) ImageIngested(source, relative string) {
	l.Info("image ingested",
		"source", source,
		"relative", relative)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path string, autoSave bool, interval time.Duration) {
	l.Debug("config loaded",
		"path", path,
		"auto_save", autoSave,
		"interval", interval)
}
