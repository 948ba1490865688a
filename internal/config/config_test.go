package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "ironlog"
  user: "ironlog"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "ironlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "ironlog")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Tailscale.Enabled {
		t.Error("tailscale.enabled = true, want false by default")
	}
}

// TestEnvOverride verifies that IRONLOG_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("IRONLOG_DB_PASSWORD", "from-env")
	t.Setenv("IRONLOG_SERVER_PORT", "9999")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("database.password = %q, want %q", cfg.Database.Password, "from-env")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
}

// TestValidateMissing verifies required-field validation failures.
func TestValidateMissing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing api key",
			mutate:  func(y string) string { return strings.Replace(y, `api_key: "test-key-123"`, `api_key: ""`, 1) },
			wantErr: "api_key",
		},
		{
			name:    "missing db host",
			mutate:  func(y string) string { return strings.Replace(y, `host: "localhost"`, `host: ""`, 1) },
			wantErr: "database.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.mutate(validYAML)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestDSN verifies the connection string format and sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "ironlog", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/ironlog?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
