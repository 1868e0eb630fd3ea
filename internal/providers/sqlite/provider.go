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
package sqlite

import (
	"context"
	"fmt"

	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Provider implements the Provider interface for SQLite. Scripts are already written for
// this engine, so statements are executed as written and foreign keys stay inline.
type Provider struct{}

// New creates a new SQLite provider
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Dialect() types.Dialect {
	return types.DialectSQLite
}

// QuoteName quotes database identifiers for SQLite
func (p *Provider) QuoteName(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

func (p *Provider) DefersForeignKeys() bool {
	return false
}

// GenerateCreateTable returns the original statement, foreign keys included
func (p *Provider) GenerateCreateTable(table *types.TableDefinition) (string, error) {
	return table.Statement, nil
}

func (p *Provider) GenerateCreateIndex(index *types.IndexDefinition) (string, error) {
	return index.Statement, nil
}

// GenerateForeignKeyConstraint returns "" since SQLite cannot add constraints to an existing table
func (p *Provider) GenerateForeignKeyConstraint(fk types.ForeignKeyConstraint) string {
	return ""
}

func (p *Provider) Catalog(q catalog.Queryer) catalog.Catalog {
	return &Catalog{q: q}
}

// Catalog reads sqlite_master
type Catalog struct {
	q catalog.Queryer
}

func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
}

// Indexes skips the automatic indexes behind PRIMARY KEY and UNIQUE, which have no SQL text
func (c *Catalog) Indexes(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND sql IS NOT NULL
		ORDER BY name`)
}

// ForeignKeys reports inline keys under the same names used when keys are attached afterwards
func (c *Catalog) ForeignKeys(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT 'FK_' || m.name || '_' || f."from" || '_' || f."table"
		FROM sqlite_master m
		JOIN pragma_foreign_key_list(m.name) f
		WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
		ORDER BY m.name, f.id`)
}
