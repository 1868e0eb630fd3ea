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
	"fmt"
	"regexp"

	"github.com/ocomsoft/fleetschema/internal/types"
)

// TypeMapping maps one embedded-engine type token to a target type
type TypeMapping struct {
	Target string
	// KeepArgs carries a (n) or (p,s) suffix over to the target type
	KeepArgs bool
	// DefaultArgs is appended when KeepArgs is set and the source had no suffix
	DefaultArgs string
	// Defaults rewrites literal default values for columns of this type
	Defaults map[string]string
}

// Rules is the translation table for one target dialect. Adding a type or expression mapping
// only touches the table literal below.
type Rules struct {
	Dialect types.Dialect
	// Identity replaces "INTEGER PRIMARY KEY [AUTOINCREMENT]"
	Identity string
	// Types is keyed by the upper-case source type, multi-word names joined by one space
	Types map[string]TypeMapping
	// Expressions rewrites default-value keywords and calls, keyed by upper-case source text
	// with whitespace removed
	Expressions map[string]string
	// Functions renames function calls inside CHECK and DEFAULT expressions
	Functions map[string]string
	// Collations maps a COLLATE name to its target; an empty target drops the clause.
	// Unlisted collations fail translation.
	Collations map[string]string
	// Unsupported lists constructs that must fail translation
	Unsupported []*regexp.Regexp

	QuoteName  func(name string) string
	TableGuard func(table, create string) string
	IndexGuard func(index, table, create string) string
}

var (
	collateNoCase = regexp.MustCompile(`(?i)\s+COLLATE\s+NOCASE\b`)
	onConflict    = regexp.MustCompile(`(?i)\bON\s+CONFLICT\b`)
	autoIncrement = regexp.MustCompile(`(?i)\bAUTOINCREMENT\b`)
	withoutRowID  = regexp.MustCompile(`(?i)\bWITHOUT\s+ROWID\b`)
)

var sqlServerRules = &Rules{
	Dialect:  types.DialectSQLServer,
	Identity: "INT IDENTITY(1,1) PRIMARY KEY",
	Types: map[string]TypeMapping{
		"INTEGER":   {Target: "INT", Defaults: map[string]string{"TRUE": "1", "FALSE": "0"}},
		"INT":       {Target: "INT"},
		"BIGINT":    {Target: "BIGINT"},
		"SMALLINT":  {Target: "SMALLINT"},
		"TEXT":      {Target: "NVARCHAR(MAX)"},
		"CLOB":      {Target: "NVARCHAR(MAX)"},
		"VARCHAR":   {Target: "NVARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"NVARCHAR":  {Target: "NVARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"CHAR":      {Target: "NCHAR", KeepArgs: true, DefaultArgs: "(1)"},
		"REAL":      {Target: "FLOAT"},
		"DOUBLE":    {Target: "FLOAT"},

		"DOUBLE PRECISION":  {Target: "FLOAT"},
		"UNSIGNED BIG INT":  {Target: "BIGINT"},
		"CHARACTER":         {Target: "NCHAR", KeepArgs: true, DefaultArgs: "(1)"},
		"CHARACTER VARYING": {Target: "NVARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"VARYING CHARACTER": {Target: "NVARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"NATIVE CHARACTER":  {Target: "NCHAR", KeepArgs: true, DefaultArgs: "(1)"},

		"FLOAT":     {Target: "FLOAT"},
		"NUMERIC":   {Target: "DECIMAL", KeepArgs: true, DefaultArgs: "(18,2)"},
		"DECIMAL":   {Target: "DECIMAL", KeepArgs: true, DefaultArgs: "(18,2)"},
		"BOOLEAN":   {Target: "BIT", Defaults: map[string]string{"TRUE": "1", "FALSE": "0"}},
		"DATE":      {Target: "DATE"},
		"DATETIME":  {Target: "DATETIME2"},
		"TIMESTAMP": {Target: "DATETIME2"},
		"TIME":      {Target: "TIME"},
		"BLOB":      {Target: "VARBINARY(MAX)"},
	},
	Expressions: map[string]string{
		"NULL":              "NULL",
		"CURRENT_TIMESTAMP": "GETDATE()",
		"CURRENT_DATE":      "CAST(GETDATE() AS DATE)",
		"CURRENT_TIME":      "CAST(GETDATE() AS TIME)",
		"DATETIME('NOW')":   "GETDATE()",
		"DATE('NOW')":       "CAST(GETDATE() AS DATE)",
		"TIME('NOW')":       "CAST(GETDATE() AS TIME)",
	},
	Functions: map[string]string{
		"LENGTH": "LEN",
		"SUBSTR": "SUBSTRING",
		"IFNULL": "ISNULL",
	},
	Collations:  map[string]string{"NOCASE": ""},
	Unsupported: []*regexp.Regexp{onConflict, autoIncrement, withoutRowID},
	QuoteName: func(name string) string {
		return fmt.Sprintf("[%s]", name)
	},
	TableGuard: func(table, create string) string {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.tables WHERE name = N'%s')\n%s", table, create)
	},
	IndexGuard: func(index, table, create string) string {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'%s'))\n%s",
			index, table, create)
	},
}

var postgreSQLRules = &Rules{
	Dialect:  types.DialectPostgreSQL,
	Identity: "INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
	Types: map[string]TypeMapping{
		"INTEGER":   {Target: "INTEGER"},
		"INT":       {Target: "INTEGER"},
		"BIGINT":    {Target: "BIGINT"},
		"SMALLINT":  {Target: "SMALLINT"},
		"TEXT":      {Target: "TEXT"},
		"CLOB":      {Target: "TEXT"},
		"VARCHAR":   {Target: "VARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"NVARCHAR":  {Target: "VARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"CHAR":      {Target: "CHAR", KeepArgs: true, DefaultArgs: "(1)"},
		"REAL":      {Target: "DOUBLE PRECISION"},
		"DOUBLE":    {Target: "DOUBLE PRECISION"},

		"DOUBLE PRECISION":  {Target: "DOUBLE PRECISION"},
		"UNSIGNED BIG INT":  {Target: "BIGINT"},
		"CHARACTER":         {Target: "CHAR", KeepArgs: true, DefaultArgs: "(1)"},
		"CHARACTER VARYING": {Target: "VARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"VARYING CHARACTER": {Target: "VARCHAR", KeepArgs: true, DefaultArgs: "(255)"},
		"NATIVE CHARACTER":  {Target: "CHAR", KeepArgs: true, DefaultArgs: "(1)"},

		"FLOAT":     {Target: "DOUBLE PRECISION"},
		"NUMERIC":   {Target: "NUMERIC", KeepArgs: true, DefaultArgs: "(18,2)"},
		"DECIMAL":   {Target: "NUMERIC", KeepArgs: true, DefaultArgs: "(18,2)"},
		"BOOLEAN":   {Target: "BOOLEAN", Defaults: map[string]string{"1": "TRUE", "0": "FALSE"}},
		"DATE":      {Target: "DATE"},
		"DATETIME":  {Target: "TIMESTAMP"},
		"TIMESTAMP": {Target: "TIMESTAMP"},
		"TIME":      {Target: "TIME"},
		"BLOB":      {Target: "BYTEA"},
	},
	Expressions: map[string]string{
		"NULL":              "NULL",
		"CURRENT_TIMESTAMP": "CURRENT_TIMESTAMP",
		"CURRENT_DATE":      "CURRENT_DATE",
		"CURRENT_TIME":      "CURRENT_TIME",
		"DATETIME('NOW')":   "CURRENT_TIMESTAMP",
		"DATE('NOW')":       "CURRENT_DATE",
		"TIME('NOW')":       "CURRENT_TIME",
	},
	Functions: map[string]string{
		"IFNULL": "COALESCE",
		"SUBSTR": "SUBSTRING",
	},
	Collations:  map[string]string{"NOCASE": ""},
	Unsupported: []*regexp.Regexp{onConflict, autoIncrement, withoutRowID},
	// Unquoted so that names fold consistently across tables, indexes and constraints
	QuoteName: func(name string) string {
		return name
	},
	TableGuard: func(table, create string) string {
		return insertIfNotExists(create, "TABLE")
	},
	IndexGuard: func(index, table, create string) string {
		return insertIfNotExists(create, "INDEX")
	},
}

var ruleTables = map[types.Dialect]*Rules{
	types.DialectSQLServer:  sqlServerRules,
	types.DialectPostgreSQL: postgreSQLRules,
}

// RulesFor returns the translation table for a client/server dialect
func RulesFor(dialect types.Dialect) (*Rules, bool) {
	rules, ok := ruleTables[dialect]
	return rules, ok
}
