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
	"database/sql"
	"fmt"
	"strings"
)

// Queryer is the subset of *sql.DB, *sql.Conn and *sql.Tx used for provisioning
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Catalog lists the objects that exist in a live database. Index listings exclude indexes that
// back primary keys and unique constraints.
type Catalog interface {
	Tables(ctx context.Context) ([]string, error)
	Indexes(ctx context.Context) ([]string, error)
	ForeignKeys(ctx context.Context) ([]string, error)
}

// Snapshot is a point-in-time view of a catalog with case-insensitive lookups
type Snapshot struct {
	tables      map[string]bool
	indexes     map[string]bool
	foreignKeys map[string]bool
}

// Load reads every table, index and foreign key name from c
func Load(ctx context.Context, c Catalog) (*Snapshot, error) {
	tables, err := c.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	indexes, err := c.Indexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	foreignKeys, err := c.ForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}

	return &Snapshot{
		tables:      toSet(tables),
		indexes:     toSet(indexes),
		foreignKeys: toSet(foreignKeys),
	}, nil
}

func (s *Snapshot) HasTable(name string) bool {
	return s.tables[strings.ToLower(name)]
}

func (s *Snapshot) HasIndex(name string) bool {
	return s.indexes[strings.ToLower(name)]
}

func (s *Snapshot) HasForeignKey(name string) bool {
	return s.foreignKeys[strings.ToLower(name)]
}

// AnyTable reports whether at least one of names exists
func (s *Snapshot) AnyTable(names []string) bool {
	for _, name := range names {
		if s.HasTable(name) {
			return true
		}
	}
	return false
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}
	return set
}

// QueryNames runs a query returning a single string column and collects the values
func QueryNames(ctx context.Context, q Queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over catalog rows: %w", err)
	}

	return names, nil
}
