package config

import (
	"log/slog"
	"os"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Curve != "bn254" {
		t.Errorf("Curve = %q, want bn254", c.Curve)
	}
	if c.StorageDepth != 1 {
		t.Errorf("StorageDepth = %d, want 1", c.StorageDepth)
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want Info", c.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("ZINC_STORAGE_DEPTH", "4")
	os.Setenv("ZINC_MAX_STEPS", "50")
	os.Setenv("ZINC_LOG_LEVEL", "debug")
	defer os.Unsetenv("ZINC_STORAGE_DEPTH")
	defer os.Unsetenv("ZINC_MAX_STEPS")
	defer os.Unsetenv("ZINC_LOG_LEVEL")

	c := Load()
	if c.StorageDepth != 4 {
		t.Errorf("StorageDepth = %d, want 4", c.StorageDepth)
	}
	if c.MaxSteps != 50 {
		t.Errorf("MaxSteps = %d, want 50", c.MaxSteps)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want Debug", c.LogLevel)
	}
}

func TestLoadIgnoresMalformed(t *testing.T) {
	os.Setenv("ZINC_MAX_STEPS", "not-a-number")
	defer os.Unsetenv("ZINC_MAX_STEPS")

	c := Load()
	if c.MaxSteps != Default().MaxSteps {
		t.Errorf("MaxSteps = %d, want default %d", c.MaxSteps, Default().MaxSteps)
	}
}
