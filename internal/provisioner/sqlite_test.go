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
package provisioner

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ocomsoft/fleetschema/internal/database"
	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/manifest"
	"github.com/ocomsoft/fleetschema/internal/providers/sqlite"
	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/state"
	"github.com/ocomsoft/fleetschema/internal/types"
	"github.com/ocomsoft/fleetschema/internal/validator"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), types.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_SQLiteBuiltInSchema(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	checkpoints := state.New(filepath.Join(t.TempDir(), "checkpoint.yaml"), false)
	p := New(sqlite.New(), Options{StrictDuplicateIndexes: true, Checkpoint: checkpoints})

	report, err := p.Run(ctx, db, schema.Script(), manifest.Default())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.OK {
		t.Fatalf("Expected OK report, got %+v", report)
	}
	// 9 tables and 15 indexes; foreign keys stay inline
	if len(report.Created) != 24 {
		t.Errorf("Expected 24 created objects, got %d", len(report.Created))
	}
	for _, obj := range report.Created {
		if obj.Kind == types.ObjectConstraint {
			t.Errorf("SQLite should not attach constraints separately: %s", obj)
		}
	}

	cat := sqlite.New().Catalog(db)
	fks, err := cat.ForeignKeys(ctx)
	if err != nil {
		t.Fatalf("Failed to list foreign keys: %v", err)
	}
	found := false
	for _, name := range fks {
		if name == "FK_TimeCard_DriverId_Drivers" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected inline foreign key FK_TimeCard_DriverId_Drivers, got %v", fks)
	}

	again, err := p.Run(ctx, db, schema.Script(), manifest.Default())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(again.Created) != 0 {
		t.Errorf("Second run should create nothing, created %v", again.Created)
	}

	cp, err := checkpoints.Load()
	if err != nil || cp == nil || cp.State != types.StateValidated {
		t.Errorf("Expected Validated checkpoint, got %+v (%v)", cp, err)
	}
}

func TestValidate_SQLiteMissingIndex(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	if _, err := New(sqlite.New(), Options{}).Run(ctx, db, schema.Script(), manifest.Default()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DROP INDEX idx_timecard_driver"); err != nil {
		t.Fatal(err)
	}

	report, err := validator.New(sqlite.New().Catalog(db), false).Validate(ctx, manifest.Default())
	if !errors.IsSchemaIncompleteError(err) {
		t.Fatalf("Expected schema incomplete error, got %v", err)
	}
	names := report.MissingNames()
	if len(names) != 1 || names[0] != "idx_timecard_driver" {
		t.Errorf("Expected only idx_timecard_driver missing, got %v", names)
	}
}
