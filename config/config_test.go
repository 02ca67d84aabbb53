package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// noEnv points Load to an env file that does not exist.
func noEnv(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.env") }

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FINAGLE_CONFIG", "")
	cfg, err := Load("", noEnv(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabasePath != "finagle.db" || cfg.Addr != ":8000" || cfg.ReportCacheTTL != 15*time.Minute {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finagle.yaml")
	content := `
database_path: /var/lib/finagle.db
addr: ":9000"
log_level: debug
report_cache_ttl: 5m
cors_origins:
  - https://example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINAGLE_ADDR", "127.0.0.1:8080")
	t.Setenv("FINAGLE_RATE_LIMIT", "2.5")

	cfg, err := Load(path, noEnv(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabasePath != "/var/lib/finagle.db" {
		t.Errorf("DatabasePath = %q, want the file value", cfg.DatabasePath)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want the env value", cfg.Addr)
	}
	if cfg.ReportCacheTTL != 5*time.Minute {
		t.Errorf("ReportCacheTTL = %v, want 5m", cfg.ReportCacheTTL)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://example.com" {
		t.Errorf("CORSOrigins = %v, want [https://example.com]", cfg.CORSOrigins)
	}
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("api_key: s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINAGLE_CONFIG", path)
	cfg, err := Load("", noEnv(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "s3cret" {
		t.Errorf("APIKey = %q, want s3cret", cfg.APIKey)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("FINAGLE_CONFIG", "")
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("FINAGLE_USER=bob\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FINAGLE_USER") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User != "bob" {
		t.Errorf("User = %q, want bob", cfg.User)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("FINAGLE_CONFIG", "")
	tests := []struct {
		name    string
		env     map[string]string
		path    string
		wantErr string
	}{
		{name: "missing file", path: "/does/not/exist.yaml", wantErr: "config file"},
		{name: "bad duration", env: map[string]string{"FINAGLE_REPORT_CACHE_TTL": "soon"}, wantErr: "REPORT_CACHE_TTL"},
		{name: "bad size", env: map[string]string{"FINAGLE_MAX_UPLOAD_BYTES": "10MB"}, wantErr: "MAX_UPLOAD_BYTES"},
		{name: "bad level", env: map[string]string{"FINAGLE_LOG_LEVEL": "loud"}, wantErr: "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path, noEnv(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DatabasePath = ""
	cfg.MaxUploadBytes = 0
	cfg.RateBurst = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("Validate() = nil, want errors")
	}
	for _, want := range []string{"database path", "max upload", "rate burst"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, want it to mention %q", err, want)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}
