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
package translator

import (
	"strings"
	"testing"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/types"
)

const driversTable = `CREATE TABLE IF NOT EXISTS Drivers (
    DriverId INTEGER PRIMARY KEY AUTOINCREMENT,
    DriverName VARCHAR(100) NOT NULL,
    Address TEXT,
    TrainingComplete BOOLEAN DEFAULT 0,
    HourlyRate NUMERIC,
    CreatedAt DATETIME DEFAULT CURRENT_TIMESTAMP,
    CHECK (length(DriverName) > 0)
)`

func mustTranslator(t *testing.T, dialect types.Dialect) *Translator {
	t.Helper()
	tr, err := New(dialect)
	if err != nil {
		t.Fatalf("Failed to create translator for %s: %v", dialect, err)
	}
	return tr
}

func TestTranslate_SQLitePassthrough(t *testing.T) {
	tr := mustTranslator(t, types.DialectSQLite)
	got, err := tr.Translate(driversTable)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != driversTable {
		t.Errorf("Embedded dialect should return statements unchanged, got %q", got)
	}
}

func TestTranslate_UnknownDialect(t *testing.T) {
	if _, err := New(types.Dialect("oracle")); err == nil {
		t.Error("Expected error for dialect without rules")
	}
}

func TestTranslate_SQLServerTable(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate(driversTable)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedParts := []string{
		"IF NOT EXISTS (SELECT 1 FROM sys.tables WHERE name = N'Drivers')\nCREATE TABLE [Drivers] (",
		"[DriverId] INT IDENTITY(1,1) PRIMARY KEY,",
		"[DriverName] NVARCHAR(100) NOT NULL,",
		"[Address] NVARCHAR(MAX),",
		"[TrainingComplete] BIT DEFAULT 0,",
		"[HourlyRate] DECIMAL(18,2),",
		"[CreatedAt] DATETIME2 DEFAULT GETDATE(),",
		"CHECK (LEN(DriverName) > 0)",
	}
	for _, part := range expectedParts {
		if !strings.Contains(got, part) {
			t.Errorf("Expected translated table to contain %q\n%s", part, got)
		}
	}
	for _, forbidden := range []string{"AUTOINCREMENT", "CURRENT_TIMESTAMP", "BOOLEAN", " TEXT"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("Translated table still contains %q\n%s", forbidden, got)
		}
	}
}

func TestTranslate_SQLServerWithoutGuard(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate("CREATE TABLE Fuel (FuelId INTEGER PRIMARY KEY, Gallons REAL)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.HasPrefix(got, "IF NOT EXISTS") {
		t.Errorf("Table without IF NOT EXISTS should not be guarded: %s", got)
	}
	if !strings.Contains(got, "[Gallons] FLOAT") {
		t.Errorf("Expected REAL mapped to FLOAT: %s", got)
	}
}

func TestTranslate_SQLServerIndex(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate("CREATE INDEX IF NOT EXISTS idx_routes_date ON Routes(Date)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_routes_date' AND object_id = OBJECT_ID(N'Routes'))\n" +
		"CREATE INDEX [idx_routes_date] ON [Routes] ([Date])"
	if got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestTranslate_UniqueIndexKeepsOrdering(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate("CREATE UNIQUE INDEX idx_vehicle_number ON Vehicles (VehicleNumber DESC, Status COLLATE NOCASE)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "CREATE UNIQUE INDEX [idx_vehicle_number] ON [Vehicles] ([VehicleNumber] DESC, [Status])"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestTranslate_UnknownTypeFails(t *testing.T) {
	_, err := mustTranslator(t, types.DialectSQLServer).Translate("CREATE TABLE Geo (Id INTEGER PRIMARY KEY, Location GEOMETRY)")
	if !errors.IsTranslationError(err) {
		t.Fatalf("Expected translation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "GEOMETRY") {
		t.Errorf("Error should name the construct: %v", err)
	}
}

func TestTranslate_UnsupportedConstructs(t *testing.T) {
	statements := []string{
		"CREATE TABLE T (Id INTEGER PRIMARY KEY, Code TEXT UNIQUE ON CONFLICT REPLACE)",
		"CREATE TABLE T (Id INTEGER PRIMARY KEY) WITHOUT ROWID",
		"CREATE TABLE T (Id INTEGER, Created DATETIME DEFAULT (strftime('%s','now')))",
		"PRAGMA foreign_keys = ON",
	}
	tr := mustTranslator(t, types.DialectSQLServer)
	for _, stmt := range statements {
		if _, err := tr.Translate(stmt); !errors.IsTranslationError(err) {
			t.Errorf("Expected translation error for %q, got %v", stmt, err)
		}
	}
}

func TestTranslate_ParenthesizedDefault(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate("CREATE TABLE T (Id INTEGER, CreatedAt DATETIME DEFAULT (datetime('now')))")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(got, "[CreatedAt] DATETIME2 DEFAULT (GETDATE())") {
		t.Errorf("Unexpected translation %s", got)
	}
}

func TestTranslate_FunctionNamesInsideLiteralsKept(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate(
		"CREATE TABLE T (Code TEXT DEFAULT 'substr(a)', CHECK (substr(Code, 1, 1) <> 'length('))")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(got, "[Code] NVARCHAR(MAX) DEFAULT 'substr(a)'") {
		t.Errorf("Default literal should be untouched:\n%s", got)
	}
	if !strings.Contains(got, "CHECK (SUBSTRING(Code, 1, 1) <> 'length(')") {
		t.Errorf("Only the call outside the literal should be renamed:\n%s", got)
	}
}

func TestTranslate_MultiWordTypes(t *testing.T) {
	stmt := "CREATE TABLE T (Rate DOUBLE PRECISION NOT NULL, Big UNSIGNED BIG INT, Label CHARACTER VARYING(40))"

	got, err := mustTranslator(t, types.DialectSQLServer).Translate(stmt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, part := range []string{"[Rate] FLOAT NOT NULL,", "[Big] BIGINT,", "[Label] NVARCHAR(40)"} {
		if !strings.Contains(got, part) {
			t.Errorf("Expected %q in\n%s", part, got)
		}
	}
	if strings.Contains(got, "PRECISION") {
		t.Errorf("Type words should not leak into options:\n%s", got)
	}

	got, err = mustTranslator(t, types.DialectPostgreSQL).Translate(stmt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(got, "Rate DOUBLE PRECISION NOT NULL,") {
		t.Errorf("Unexpected PostgreSQL translation:\n%s", got)
	}
}

func TestTranslate_ColumnOptions(t *testing.T) {
	got, err := mustTranslator(t, types.DialectSQLServer).Translate(
		"CREATE TABLE T (Code TEXT COLLATE NOCASE CONSTRAINT uq_code UNIQUE NULL, " +
			"DriverId INTEGER REFERENCES Drivers(DriverId) on delete cascade, Qty INTEGER CHECK (Qty >= 0))")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expectedParts := []string{
		"[Code] NVARCHAR(MAX) CONSTRAINT [uq_code] UNIQUE NULL,",
		"[DriverId] INT REFERENCES [Drivers] ([DriverId]) ON DELETE CASCADE,",
		"[Qty] INT CHECK (Qty >= 0)",
	}
	for _, part := range expectedParts {
		if !strings.Contains(got, part) {
			t.Errorf("Expected %q in\n%s", part, got)
		}
	}
	if strings.Contains(got, "COLLATE") {
		t.Errorf("NOCASE collation should be dropped:\n%s", got)
	}
}

func TestTranslate_UnknownColumnOptionFails(t *testing.T) {
	cases := []struct {
		stmt      string
		construct string
	}{
		{"CREATE TABLE T (Name TEXT COLLATE BINARY)", "BINARY"},
		{"CREATE TABLE T (A INTEGER, B INTEGER GENERATED ALWAYS AS (A * 2))", "GENERATED"},
		{"CREATE TABLE T (A INTEGER NOT NULL ON CONFLICT FAIL)", "ON CONFLICT"},
	}
	for _, dialect := range []types.Dialect{types.DialectSQLServer, types.DialectPostgreSQL} {
		tr := mustTranslator(t, dialect)
		for _, tc := range cases {
			_, err := tr.Translate(tc.stmt)
			if !errors.IsTranslationError(err) {
				t.Errorf("%s: expected translation error for %q, got %v", dialect, tc.stmt, err)
				continue
			}
			if !strings.Contains(err.Error(), tc.construct) {
				t.Errorf("%s: error should name %q: %v", dialect, tc.construct, err)
			}
		}
	}
}

func TestTranslate_PostgreSQL(t *testing.T) {
	got, err := mustTranslator(t, types.DialectPostgreSQL).Translate(driversTable)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expectedParts := []string{
		"CREATE TABLE IF NOT EXISTS Drivers (",
		"DriverId INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,",
		"TrainingComplete BOOLEAN DEFAULT FALSE,",
		"CreatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,",
		"CHECK (length(DriverName) > 0)",
	}
	for _, part := range expectedParts {
		if !strings.Contains(got, part) {
			t.Errorf("Expected translated table to contain %q\n%s", part, got)
		}
	}

	idx, err := mustTranslator(t, types.DialectPostgreSQL).Translate("CREATE INDEX IF NOT EXISTS idx_timecard_date ON TimeCard(Date)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if idx != "CREATE INDEX IF NOT EXISTS idx_timecard_date ON TimeCard (Date)" {
		t.Errorf("Unexpected index translation %q", idx)
	}
}

func TestTranslate_BuiltInScriptIsTotal(t *testing.T) {
	p := parser.New()
	statements := p.Split(schema.Script()).Statements

	for _, dialect := range []types.Dialect{types.DialectSQLServer, types.DialectPostgreSQL} {
		tr := mustTranslator(t, dialect)
		for _, stmt := range statements {
			got, err := tr.Translate(stmt.Text)
			if err != nil {
				t.Errorf("%s: failed to translate statement %d: %v", dialect, stmt.Position, err)
				continue
			}
			if got == stmt.Text {
				t.Errorf("%s: statement %d was not rewritten", dialect, stmt.Position)
			}
			if strings.Contains(strings.ToUpper(got), "AUTOINCREMENT") {
				t.Errorf("%s: statement %d still uses AUTOINCREMENT", dialect, stmt.Position)
			}
		}
	}
}
