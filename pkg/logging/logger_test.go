package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := New(level, "production")
		if logger == nil || logger.Logger == nil {
			t.Fatalf("expected logger for level %q", level)
		}
	}
}

func TestNewDevelopmentHandler(t *testing.T) {
	logger := New("debug", "development")
	if logger == nil {
		t.Fatal("expected logger")
	}
	// Must not panic when logging structured attributes.
	logger.Debug("dev log", "key", "value")
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected default logger")
	}
	logger.Info("hello", "key", "value")
}

func TestWith(t *testing.T) {
	logger := Default().With("component", "test")
	if logger == nil || logger.Logger == nil {
		t.Fatal("expected child logger")
	}
	logger.Info("scoped")
}
