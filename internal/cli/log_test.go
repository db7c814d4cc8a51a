package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      log.Level
		emit       func(*log.Logger)
		wantOutput bool
		wantCaller bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true, false},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true, true},
		{"warn at warn", log.WarnLevel, func(l *log.Logger) { l.Warn("x") }, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantOutput {
				t.Errorf("output = %v, want %v", got, tt.wantOutput)
			}
			if got := strings.Contains(buf.String(), "log_test.go"); got != tt.wantCaller {
				t.Errorf("caller in %q = %v, want %v", buf.String(), got, tt.wantCaller)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Replayed 3 edits")
	if !strings.Contains(buf.String(), "Replayed 3 edits (") {
		t.Errorf("done() output = %q, want message with duration", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext(empty) = nil, want default")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), l))
	if got != l {
		t.Fatalf("loggerFromContext() = %p, want %p", got, l)
	}
	got.Info("attached")
	if !strings.Contains(buf.String(), "attached") {
		t.Errorf("output = %q, want attached", buf.String())
	}
}
