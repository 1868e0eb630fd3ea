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
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ocomsoft/fleetschema/cmd"
	"github.com/ocomsoft/fleetschema/internal/state"
	"github.com/ocomsoft/fleetschema/internal/types"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := cmd.GetRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestIntegration_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	// Step 1: init writes config, manifest and an editable copy of the schema
	if err := runCLI(t, "init", "--export-schema", "schema.sql"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	for _, name := range []string{"fleetschema.config.yaml", "fleetschema.manifest.yaml", "schema.sql", "migrations"} {
		if _, err := os.Stat(name); err != nil {
			t.Fatalf("Expected %s to exist: %v", name, err)
		}
	}

	// Step 2: provision the embedded database from the exported script
	if err := runCLI(t, "provision"); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "fleet.db")); err != nil {
		t.Fatalf("Expected fleet.db to be created: %v", err)
	}

	cp, err := state.New(state.DefaultCheckpointFile, false).Load()
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp == nil || cp.State != types.StateValidated {
		t.Fatalf("Expected Validated checkpoint, got %+v", cp)
	}

	// Step 3: a second run and a validate pass both succeed without changes
	if err := runCLI(t, "provision"); err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
	if err := runCLI(t, "validate"); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	// Step 4: render the same script for SQL Server without connecting
	if err := runCLI(t, "plan", "--database", "sqlserver", "--output", "fleet_mssql.sql"); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	data, err := os.ReadFile("fleet_mssql.sql")
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)
	if !strings.Contains(script, "CREATE TABLE [Vehicles]") {
		t.Error("Plan should create Vehicles")
	}
	if !strings.Contains(script, "ADD CONSTRAINT [FK_Routes_") {
		t.Error("Plan should attach route foreign keys after the tables")
	}
	if strings.Index(script, "ADD CONSTRAINT") < strings.LastIndex(script, "CREATE TABLE") {
		t.Error("Foreign keys must follow every table")
	}
	if !strings.Contains(script, "\nGO\n") {
		t.Error("SQL Server plan should be separated into batches")
	}
}

func TestIntegration_ValidateReportsMissing(t *testing.T) {
	tmpDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	// An empty database has none of the manifest objects
	err := runCLI(t, "validate", "--database", "sqlite", "--dsn", filepath.Join(tmpDir, "empty.db"))
	if err == nil {
		t.Fatal("Expected validate to fail on an empty database")
	}
	if !strings.Contains(err.Error(), "Vehicles") {
		t.Errorf("Expected the missing tables in the error, got: %v", err)
	}
}
