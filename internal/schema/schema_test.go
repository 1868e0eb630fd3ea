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
package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/types"
)

func TestScript_Parses(t *testing.T) {
	p := parser.New()

	tables, problems := p.ExtractTables(Script())
	if len(problems) != 0 {
		t.Fatalf("Built-in script has structure problems: %v", problems)
	}
	if len(tables) != 9 {
		t.Errorf("Expected 9 tables, got %d", len(tables))
	}

	set := p.ExtractIndexes(Script())
	if len(set.Duplicates) != 0 || len(set.Malformed) != 0 {
		t.Errorf("Built-in script index problems: duplicates=%v malformed=%v", set.Duplicates, set.Malformed)
	}
	if len(set.Indexes) != 15 {
		t.Errorf("Expected 15 indexes, got %d", len(set.Indexes))
	}

	for _, stmt := range p.Split(Script()).Statements {
		if stmt.Kind == types.Other {
			t.Errorf("Unexpected non-DDL statement: %q", stmt.Text)
		}
	}
}

func TestLoad(t *testing.T) {
	got, err := Load("")
	if err != nil || got != Script() {
		t.Fatalf("Load(\"\") should return the built-in script, err=%v", err)
	}

	path := filepath.Join(t.TempDir(), "custom.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE T (id INTEGER);"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "CREATE TABLE T (id INTEGER);" {
		t.Errorf("Unexpected script %q", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Error("Expected error for missing file")
	}
}
