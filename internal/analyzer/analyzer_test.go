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
package analyzer

import (
	"testing"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

func table(name string, refs ...string) types.TableDefinition {
	def := types.TableDefinition{Name: name}
	for _, ref := range refs {
		def.ForeignKeys = append(def.ForeignKeys, types.ForeignKeyConstraint{
			Table: name, Column: ref + "Id", ReferencedTable: ref, ReferencedColumn: ref + "Id",
		})
	}
	return def
}

func names(tables []types.TableDefinition) []string {
	var out []string
	for _, t := range tables {
		out = append(out, t.Name)
	}
	return out
}

func TestOrderTables_ReferencedFirst(t *testing.T) {
	tables := []types.TableDefinition{
		table("Routes", "Vehicles", "Drivers"),
		table("Drivers"),
		table("TimeCard", "Drivers"),
		table("Vehicles"),
	}

	ordered, err := New(false).OrderTables(tables)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{"Vehicles", "Drivers", "Routes", "TimeCard"}
	got := names(ordered)
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, got)
			break
		}
	}
}

func TestOrderTables_IgnoresSelfAndUnknownReferences(t *testing.T) {
	tables := []types.TableDefinition{
		table("Employees", "Employees", "Departments"),
		table("Audit"),
	}

	ordered, err := New(false).OrderTables(tables)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got := names(ordered)
	if len(got) != 2 || got[0] != "Employees" || got[1] != "Audit" {
		t.Errorf("Expected input order, got %v", got)
	}
}

func TestOrderTables_CycleFallsBackToInputOrder(t *testing.T) {
	tables := []types.TableDefinition{
		table("A", "B"),
		table("B", "A"),
		table("C"),
	}

	ordered, err := New(false).OrderTables(tables)
	if !errors.IsCircularDependencyError(err) {
		t.Fatalf("Expected circular dependency error, got %v", err)
	}
	got := names(ordered)
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("Expected input order fallback, got %v", got)
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	tables := []types.TableDefinition{
		table("Fuel", "Vehicles"),
		table("Maintenance", "Vehicles"),
		table("Vehicles"),
	}

	a := New(false)
	first, _ := a.TopologicalSort(a.AnalyzeDependencies(tables))
	for i := 0; i < 10; i++ {
		again, _ := a.TopologicalSort(a.AnalyzeDependencies(tables))
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("Order changed between runs: %v vs %v", first, again)
			}
		}
	}
}
