package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDataDir, EnvPort, EnvDatabaseURL, EnvBaseDir, EnvStrictText, EnvMaxHashesPerSecond, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func TestLoad_usesDefaultsWhenEnvUnset(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v, want nil", err)
	}
	if cfg.DataDir() != "./data" {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), "./data")
	}
	if cfg.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", cfg.Port())
	}
	if cfg.DatabaseURL() != "" {
		t.Errorf("DatabaseURL() = %q, want empty", cfg.DatabaseURL())
	}
	if cfg.BaseDir() != "" {
		t.Errorf("BaseDir() = %q, want empty", cfg.BaseDir())
	}
	if cfg.StrictText() {
		t.Error("StrictText() = true, want false")
	}
	if cfg.MaxHashesPerSecond() != 0 {
		t.Errorf("MaxHashesPerSecond() = %d, want 0", cfg.MaxHashesPerSecond())
	}
	if cfg.LogLevel() != "info" || cfg.LogFormat() != "text" {
		t.Errorf("LogLevel/LogFormat = %q/%q, want info/text", cfg.LogLevel(), cfg.LogFormat())
	}
}

func TestLoad_usesEnvWhenSet(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, "/tmp/indexer")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvDatabaseURL, "postgres://u:p@localhost:5432/indexer")
	t.Setenv(EnvBaseDir, "/srv/docs")
	t.Setenv(EnvStrictText, "true")
	t.Setenv(EnvMaxHashesPerSecond, "25")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v, want nil", err)
	}
	if cfg.DataDir() != "/tmp/indexer" {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), "/tmp/indexer")
	}
	if cfg.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", cfg.Port())
	}
	if cfg.DatabaseURL() != "postgres://u:p@localhost:5432/indexer" {
		t.Errorf("DatabaseURL() = %q", cfg.DatabaseURL())
	}
	if cfg.BaseDir() != "/srv/docs" {
		t.Errorf("BaseDir() = %q, want /srv/docs", cfg.BaseDir())
	}
	if !cfg.StrictText() {
		t.Error("StrictText() = false, want true")
	}
	if cfg.MaxHashesPerSecond() != 25 {
		t.Errorf("MaxHashesPerSecond() = %d, want 25", cfg.MaxHashesPerSecond())
	}
	if cfg.LogLevel() != "debug" || cfg.LogFormat() != "json" {
		t.Errorf("LogLevel/LogFormat = %q/%q, want debug/json", cfg.LogLevel(), cfg.LogFormat())
	}
}

func TestLoad_returnsErrorForInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvPort, "not-a-number"},
		{EnvPort, "-1"},
		{EnvPort, "70000"},
		{EnvStrictText, "maybe"},
		{EnvMaxHashesPerSecond, "-3"},
		{EnvMaxHashesPerSecond, "fast"},
		{EnvLogFormat, "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() err = nil, want non-nil for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv_doesNotOverrideSetVariables(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvPort+"=7070\n"+EnvBaseDir+"=/from/dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv(EnvPort, "6060")
	// godotenv only fills variables that are absent, so unset the one we want loaded.
	os.Unsetenv(EnvBaseDir)

	LoadDotEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.Port() != 6060 {
		t.Errorf("Port() = %d, want 6060 (env wins over .env)", cfg.Port())
	}
	if cfg.BaseDir() != "/from/dotenv" {
		t.Errorf("BaseDir() = %q, want /from/dotenv", cfg.BaseDir())
	}
}
