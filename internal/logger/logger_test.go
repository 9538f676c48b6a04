package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWithLevel_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.InfoLevel)

	l.RuleFired("bold", "input", 3)
	if buf.Len() != 0 {
		t.Errorf("debug output leaked at info level: %q", buf.String())
	}

	l.DocumentSaved("notes.md", 42)
	if !strings.Contains(buf.String(), "document saved") || !strings.Contains(buf.String(), "notes.md") {
		t.Errorf("output = %q, want saved message with path", buf.String())
	}
}

func TestDomainHelpers(t *testing.T) {
	tests := []struct {
		name string
		log  func(*Logger)
		want string
	}{
		{"rule", func(l *Logger) { l.RuleFired("italic", "paste", 7) }, "rule fired"},
		{"promoted", func(l *Logger) { l.Promoted("taskList", 1) }, "promoted"},
		{"degraded", func(l *Logger) { l.Degraded("id", "![a](", 4) }, "image degraded to text"},
		{"rejected", func(l *Logger) { l.TransactionRejected("input", errors.New("boom")) }, "boom"},
		{"save failed", func(l *Logger) { l.SaveFailed("x.md", errors.New("disk full")) }, "disk full"},
		{"ingested", func(l *Logger) { l.ImageIngested("/tmp/a.png", "assets/a.png") }, "assets/a.png"},
		{"config", func(l *Logger) { l.ConfigLoaded(".tanmark.yml", true, 0) }, "config loaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWithLevel(&buf, log.DebugLevel))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("warn"); err != nil || lvl != log.WarnLevel {
		t.Errorf("ParseLevel(warn) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) succeeded, want error")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("ignored")
}
