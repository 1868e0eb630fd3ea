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
package providers

import (
	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Provider defines the interface for database-specific DDL generation and catalog access
type Provider interface {
	Dialect() types.Dialect
	QuoteName(name string) string

	// DefersForeignKeys reports whether foreign keys are stripped from table creation and
	// attached once every table exists
	DefersForeignKeys() bool

	// DDL Generation. Input statements are written for the embedded engine.
	GenerateCreateTable(table *types.TableDefinition) (string, error)
	GenerateCreateIndex(index *types.IndexDefinition) (string, error)
	// GenerateForeignKeyConstraint returns a statement that adds fk only when the constraint is
	// absent, or "" when the dialect keeps foreign keys inline
	GenerateForeignKeyConstraint(fk types.ForeignKeyConstraint) string

	// Catalog returns the live-schema reader for a connection
	Catalog(q catalog.Queryer) catalog.Catalog
}
