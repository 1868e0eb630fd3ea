/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Type != "sqlite" {
		t.Errorf("Expected default type sqlite, got %s", cfg.Database.Type)
	}
	if !cfg.Provisioning.StrictDuplicateIndexes {
		t.Error("Duplicate index names should fail by default")
	}
	if cfg.Provisioning.StatementTimeout != 0 {
		t.Errorf("Expected no statement timeout by default, got %s", cfg.Provisioning.StatementTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetschema.config.yaml")
	content := `database:
  type: mssql
  host: db.example.com
  port: 1433
  name: fleet
  user: sa
  password: secret
provisioning:
  statement_timeout: 30s
  strict_duplicate_indexes: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLEETSCHEMA_DATABASE_NAME", "fleet_test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dialect, err := cfg.Dialect()
	if err != nil || dialect != types.DialectSQLServer {
		t.Errorf("Expected sqlserver dialect, got %s (%v)", dialect, err)
	}
	if cfg.Database.Name != "fleet_test" {
		t.Errorf("Expected environment override fleet_test, got %s", cfg.Database.Name)
	}
	if cfg.Provisioning.StatementTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.Provisioning.StatementTimeout)
	}
	if cfg.Provisioning.StrictDuplicateIndexes {
		t.Error("Expected strict duplicate indexes to be disabled")
	}
	if cfg.Provisioning.CheckpointFile != ".fleetschema_state.yaml" {
		t.Errorf("Expected default checkpoint file, got %s", cfg.Provisioning.CheckpointFile)
	}
}

func TestLoad_InvalidType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("database:\n  type: oracle\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		database DatabaseConfig
		contains []string
	}{
		{
			name:     "dsn wins",
			database: DatabaseConfig{Type: "postgresql", DSN: "postgres://x/y", Host: "ignored"},
			contains: []string{"postgres://x/y"},
		},
		{
			name:     "sqlite path",
			database: DatabaseConfig{Type: "sqlite", Path: "data/fleet.db"},
			contains: []string{"data/fleet.db"},
		},
		{
			name:     "sqlserver",
			database: DatabaseConfig{Type: "sqlserver", Host: "db", Port: 1433, Name: "fleet", User: "sa", Password: "pw", ConnectTimeout: 5},
			contains: []string{"sqlserver://sa:pw@db:1433", "database=fleet", "connection+timeout=5"},
		},
		{
			name:     "postgresql",
			database: DatabaseConfig{Type: "postgres", Host: "db", Name: "fleet", User: "app", SSLMode: "require"},
			contains: []string{"postgres://app@db/fleet", "sslmode=require"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: tt.database}
			dsn, err := cfg.ConnectionString()
			if err != nil {
				t.Fatalf("ConnectionString failed: %v", err)
			}
			for _, part := range tt.contains {
				if !strings.Contains(dsn, part) {
					t.Errorf("Expected %q to contain %q", dsn, part)
				}
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fleetschema.config.yaml")
	cfg := DefaultConfig()
	cfg.Provisioning.StatementTimeout = 45 * time.Second

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Fleetschema Configuration File") {
		t.Error("Saved file should start with the header comment")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of saved file failed: %v", err)
	}
	if loaded.Provisioning.StatementTimeout != 45*time.Second {
		t.Errorf("Expected 45s after round trip, got %s", loaded.Provisioning.StatementTimeout)
	}
}
