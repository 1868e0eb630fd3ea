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
package types

import (
	"fmt"
	"strings"
)

// Dialect identifies the backend a schema is provisioned against
type Dialect string

const (
	// DialectSQLite is the embedded, file-based engine the canonical script is written for
	DialectSQLite Dialect = "sqlite"
	// DialectSQLServer is the client/server engine with identity columns and the sys catalog
	DialectSQLServer Dialect = "sqlserver"
	// DialectPostgreSQL is a client/server engine addressed through pg_catalog
	DialectPostgreSQL Dialect = "postgresql"
)

// ParseDialect parses a string into a Dialect, accepting the common driver aliases
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	case "postgresql", "postgres", "pgsql":
		return DialectPostgreSQL, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s (supported: sqlite, sqlserver, postgresql)", s)
	}
}

// IsClientServer reports whether foreign keys are deferred until every table exists
func (d Dialect) IsClientServer() bool {
	return d == DialectSQLServer || d == DialectPostgreSQL
}

func (d Dialect) String() string {
	return string(d)
}

// StatementKind tags a top-level statement of a schema script
type StatementKind string

const (
	TableCreate StatementKind = "TABLE_CREATE"
	IndexCreate StatementKind = "INDEX_CREATE"
	Other       StatementKind = "OTHER"
)

// Statement is one top-level statement of a schema script
type Statement struct {
	Kind     StatementKind
	Text     string
	Position int
}

// SchemaScript is the ordered statement list of one script. It is never mutated after splitting.
type SchemaScript struct {
	Statements []Statement
}

// OfKind returns the statements of the given kind in script order
func (s SchemaScript) OfKind(kind StatementKind) []Statement {
	var out []Statement
	for _, stmt := range s.Statements {
		if stmt.Kind == kind {
			out = append(out, stmt)
		}
	}
	return out
}

// ForeignKeyConstraint is a single-column reference extracted from a table body
type ForeignKeyConstraint struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	// Actions holds any trailing ON DELETE / ON UPDATE clauses verbatim
	Actions string
}

// Name returns the deterministic constraint name used when the key is attached after creation
func (fk ForeignKeyConstraint) Name() string {
	return fmt.Sprintf("FK_%s_%s_%s", fk.Table, fk.Column, fk.ReferencedTable)
}

func (fk ForeignKeyConstraint) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", fk.Table, fk.Column, fk.ReferencedTable, fk.ReferencedColumn)
}

// TableDefinition is a CREATE TABLE statement located in a script
type TableDefinition struct {
	Name string
	// Head is the statement text up to and excluding the opening parenthesis
	Head string
	// Body is the raw column-definition text between the outer parentheses
	Body string
	// Statement is the full CREATE TABLE text including the closing parenthesis
	Statement   string
	ForeignKeys []ForeignKeyConstraint
}

// DependsOn returns the distinct tables this table references, excluding itself
func (t *TableDefinition) DependsOn() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, fk := range t.ForeignKeys {
		key := strings.ToLower(fk.ReferencedTable)
		if key == strings.ToLower(t.Name) || seen[key] {
			continue
		}
		seen[key] = true
		deps = append(deps, fk.ReferencedTable)
	}
	return deps
}

// IndexDefinition is a CREATE INDEX statement located in a script
type IndexDefinition struct {
	Name      string
	Table     string
	Columns   []string
	Unique    bool
	Statement string
}

// IndexSet is the result of index extraction. Duplicates holds every name defined more than once,
// Malformed holds index statements whose name or target table could not be parsed.
type IndexSet struct {
	Indexes    []IndexDefinition
	Duplicates []string
	Malformed  []string
}

// Manifest lists the objects that must exist once provisioning finishes
type Manifest struct {
	Tables  []string `yaml:"tables"`
	Indexes []string `yaml:"indexes"`
}

// HasTable reports whether the manifest requires the given table (case-insensitive)
func (m *Manifest) HasTable(name string) bool {
	for _, t := range m.Tables {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// ObjectKind classifies schema objects in reports
type ObjectKind string

const (
	ObjectTable      ObjectKind = "table"
	ObjectConstraint ObjectKind = "constraint"
	ObjectIndex      ObjectKind = "index"
)

// Object is a schema object named in a report
type Object struct {
	Kind  ObjectKind `yaml:"kind" json:"kind"`
	Name  string     `yaml:"name" json:"name"`
	Table string     `yaml:"table,omitempty" json:"table,omitempty"`
}

func (o Object) String() string {
	if o.Table != "" && o.Kind != ObjectTable {
		return fmt.Sprintf("%s %s on %s", o.Kind, o.Name, o.Table)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Name)
}

// State is a provisioning state
type State string

const (
	StateUnchecked          State = "Unchecked"
	StateTablesCreated      State = "TablesCreated"
	StateTablesSkipped      State = "TablesSkipped"
	StateConstraintsApplied State = "ConstraintsApplied"
	StateIndexesApplied     State = "IndexesApplied"
	StateValidated          State = "Validated"
	StateFailed             State = "Failed"
)

// Report is the result of one provisioning or validation run
type Report struct {
	OK            bool     `json:"ok"`
	Dialect       Dialect  `json:"dialect"`
	State         State    `json:"state"`
	Transitions   []State  `json:"transitions,omitempty"`
	Created       []Object `json:"created,omitempty"`
	Skipped       []Object `json:"skipped,omitempty"`
	Missing       []Object `json:"missing,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

// MissingNames returns the names of the missing objects
func (r *Report) MissingNames() []string {
	names := make([]string, 0, len(r.Missing))
	for _, o := range r.Missing {
		names = append(names, o.Name)
	}
	return names
}

// Checkpoint records the last completed provisioning phase for resuming a failed run
type Checkpoint struct {
	ScriptHash string  `yaml:"script_hash"`
	Dialect    Dialect `yaml:"dialect"`
	State      State   `yaml:"state"`
	UpdatedAt  string  `yaml:"updated_at"`
}
