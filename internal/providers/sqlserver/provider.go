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
package sqlserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/translator"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Provider implements the Provider interface for SQL Server
type Provider struct {
	translator *translator.Translator
}

// New creates a new SQL Server provider
func New() *Provider {
	return &Provider{
		translator: translator.MustNew(types.DialectSQLServer),
	}
}

func (p *Provider) Dialect() types.Dialect {
	return types.DialectSQLServer
}

// QuoteName quotes database identifiers for SQL Server
func (p *Provider) QuoteName(name string) string {
	return fmt.Sprintf("[%s]", name)
}

// DefersForeignKeys is true: tables are created in any order and keys attached afterwards
func (p *Provider) DefersForeignKeys() bool {
	return true
}

// GenerateCreateTable translates a CREATE TABLE statement whose foreign keys were already removed
func (p *Provider) GenerateCreateTable(table *types.TableDefinition) (string, error) {
	return p.translator.Translate(table.Statement)
}

func (p *Provider) GenerateCreateIndex(index *types.IndexDefinition) (string, error) {
	return p.translator.Translate(index.Statement)
}

// GenerateForeignKeyConstraint generates a guarded ALTER TABLE ... ADD CONSTRAINT
func (p *Provider) GenerateForeignKeyConstraint(fk types.ForeignKeyConstraint) string {
	var sql strings.Builder
	sql.WriteString(fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.foreign_keys WHERE name = N'%s' AND parent_object_id = OBJECT_ID(N'%s'))\n",
		fk.Name(), fk.Table))
	sql.WriteString(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		p.QuoteName(fk.Table),
		p.QuoteName(fk.Name()),
		p.QuoteName(fk.Column),
		p.QuoteName(fk.ReferencedTable),
		p.QuoteName(fk.ReferencedColumn)))
	if fk.Actions != "" {
		sql.WriteString(" " + fk.Actions)
	}
	return sql.String()
}

func (p *Provider) Catalog(q catalog.Queryer) catalog.Catalog {
	return &Catalog{q: q}
}

// Catalog reads the sys catalog views of the connected database
type Catalog struct {
	q catalog.Queryer
}

func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `SELECT name FROM sys.tables ORDER BY name`)
}

func (c *Catalog) Indexes(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT i.name
		FROM sys.indexes i
		JOIN sys.tables t ON t.object_id = i.object_id
		WHERE i.name IS NOT NULL
			AND i.is_primary_key = 0
			AND i.is_unique_constraint = 0
		ORDER BY i.name`)
}

func (c *Catalog) ForeignKeys(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `SELECT name FROM sys.foreign_keys ORDER BY name`)
}
