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
package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/translator"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Provider implements the Provider interface for PostgreSQL. Identifiers are left unquoted and
// therefore fold to lower case; catalog lookups compare names case-insensitively.
type Provider struct {
	translator *translator.Translator
}

// New creates a new PostgreSQL provider
func New() *Provider {
	return &Provider{
		translator: translator.MustNew(types.DialectPostgreSQL),
	}
}

func (p *Provider) Dialect() types.Dialect {
	return types.DialectPostgreSQL
}

func (p *Provider) QuoteName(name string) string {
	return p.translator.QuoteName(name)
}

func (p *Provider) DefersForeignKeys() bool {
	return true
}

func (p *Provider) GenerateCreateTable(table *types.TableDefinition) (string, error) {
	return p.translator.Translate(table.Statement)
}

func (p *Provider) GenerateCreateIndex(index *types.IndexDefinition) (string, error) {
	return p.translator.Translate(index.Statement)
}

// GenerateForeignKeyConstraint wraps ALTER TABLE ... ADD CONSTRAINT in a DO block, since
// PostgreSQL has no IF NOT EXISTS form for constraints
func (p *Provider) GenerateForeignKeyConstraint(fk types.ForeignKeyConstraint) string {
	alter := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		p.QuoteName(fk.Table),
		p.QuoteName(fk.Name()),
		p.QuoteName(fk.Column),
		p.QuoteName(fk.ReferencedTable),
		p.QuoteName(fk.ReferencedColumn))
	if fk.Actions != "" {
		alter += " " + fk.Actions
	}

	var sql strings.Builder
	sql.WriteString("DO $$\nBEGIN\n")
	sql.WriteString(fmt.Sprintf("    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE lower(conname) = lower('%s')) THEN\n", fk.Name()))
	sql.WriteString("        " + alter + ";\n")
	sql.WriteString("    END IF;\nEND\n$$")
	return sql.String()
}

func (p *Provider) Catalog(q catalog.Queryer) catalog.Catalog {
	return &Catalog{q: q}
}

// Catalog reads pg_catalog for the current schema
type Catalog struct {
	q catalog.Queryer
}

func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT tablename FROM pg_catalog.pg_tables
		WHERE schemaname = current_schema()
		ORDER BY tablename`)
}

// Indexes excludes indexes owned by primary key and unique constraints
func (c *Catalog) Indexes(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT ic.relname
		FROM pg_catalog.pg_index x
		JOIN pg_catalog.pg_class ic ON ic.oid = x.indexrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = ic.relnamespace
		LEFT JOIN pg_catalog.pg_constraint k ON k.conindid = x.indexrelid AND k.contype IN ('p', 'u')
		WHERE n.nspname = current_schema() AND k.oid IS NULL
		ORDER BY ic.relname`)
}

func (c *Catalog) ForeignKeys(ctx context.Context) ([]string, error) {
	return catalog.QueryNames(ctx, c.q, `
		SELECT k.conname
		FROM pg_catalog.pg_constraint k
		JOIN pg_catalog.pg_namespace n ON n.oid = k.connamespace
		WHERE k.contype = 'f' AND n.nspname = current_schema()
		ORDER BY k.conname`)
}
