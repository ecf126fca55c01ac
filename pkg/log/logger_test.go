package log

import (
	"log/slog"
	"testing"
)

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	t.Run("unknown level panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for unknown level")
			}
		}()
		ToLogLevel("verbose")
	})
}

func TestErrAttr(t *testing.T) {
	attr := ErrAttr(nil)
	if attr.Key != ErrAttrKey {
		t.Errorf("Key = %q, want %q", attr.Key, ErrAttrKey)
	}
}
