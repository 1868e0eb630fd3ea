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
package catalog

import (
	"context"
	"errors"
	"testing"
)

type staticCatalog struct {
	tables, indexes, foreignKeys []string
	err                          error
}

func (c staticCatalog) Tables(context.Context) ([]string, error)      { return c.tables, c.err }
func (c staticCatalog) Indexes(context.Context) ([]string, error)     { return c.indexes, nil }
func (c staticCatalog) ForeignKeys(context.Context) ([]string, error) { return c.foreignKeys, nil }

func TestLoad_CaseInsensitive(t *testing.T) {
	snap, err := Load(context.Background(), staticCatalog{
		tables:      []string{"routes", "Drivers"},
		indexes:     []string{"IDX_ROUTES_DATE"},
		foreignKeys: []string{"fk_routes_amdriverid_drivers"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !snap.HasTable("Routes") || !snap.HasTable("DRIVERS") {
		t.Error("Expected table lookups to ignore case")
	}
	if snap.HasTable("Vehicles") {
		t.Error("Vehicles should not exist")
	}
	if !snap.HasIndex("idx_routes_date") {
		t.Error("Expected index lookup to ignore case")
	}
	if !snap.HasForeignKey("FK_Routes_AMDriverId_Drivers") {
		t.Error("Expected foreign key lookup to ignore case")
	}
	if !snap.AnyTable([]string{"Vehicles", "Routes"}) || snap.AnyTable([]string{"Fuel"}) {
		t.Error("AnyTable returned the wrong answer")
	}
}

func TestLoad_PropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	if _, err := Load(context.Background(), staticCatalog{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped error, got %v", err)
	}
}
