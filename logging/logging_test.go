package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
		enabled zapcore.Level
	}{
		{"info", "json", false, zapcore.InfoLevel},
		{"DEBUG", "console", false, zapcore.DebugLevel},
		{"warn", "", false, zapcore.WarnLevel},
		{"verbose", "json", true, 0},
		{"info", "xml", true, 0},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q, %q): err = %v", tt.level, tt.format, err)
			continue
		}
		if err != nil {
			continue
		}
		if !logger.Core().Enabled(tt.enabled) {
			t.Errorf("New(%q, %q): level %s not enabled", tt.level, tt.format, tt.enabled)
		}
		if tt.enabled > zapcore.DebugLevel && logger.Core().Enabled(tt.enabled-1) {
			t.Errorf("New(%q, %q): level below %s should be disabled", tt.level, tt.format, tt.enabled)
		}
	}
}

func TestInstall(t *testing.T) {
	before := zap.L()
	undo, err := Install("error", "json")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if zap.L() == before {
		t.Error("global logger was not replaced")
	}
	undo()
	if zap.L() != before {
		t.Error("global logger was not restored")
	}
}
