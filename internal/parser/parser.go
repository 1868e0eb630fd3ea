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
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

var (
	tableHeadRe   = regexp.MustCompile("(?is)^CREATE\\s+(?:TEMP(?:ORARY)?\\s+)?TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?([\\w.\"\\[\\]`]+)")
	indexRe       = regexp.MustCompile("(?is)^CREATE\\s+(UNIQUE\\s+)?INDEX\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?([\\w.\"\\[\\]`]+)\\s+ON\\s+([\\w.\"\\[\\]`]+)\\s*\\(")
	tableKindRe   = regexp.MustCompile(`(?is)^CREATE\s+(?:TEMP(?:ORARY)?\s+)?TABLE\b`)
	indexKindRe   = regexp.MustCompile(`(?is)^CREATE\s+(?:UNIQUE\s+)?INDEX\b`)
	ifNotExistsRe = regexp.MustCompile(`(?is)^CREATE\s+(?:TEMP(?:ORARY)?\s+|UNIQUE\s+)?(?:TABLE|INDEX)\s+IF\s+NOT\s+EXISTS\b`)
)

// Parser is stateless. Problems it finds are returned to the caller rather than logged, so the
// caller decides where they are reported.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Split breaks a script into its top-level statements. Semicolons inside parentheses,
// quoted text and comments do not terminate a statement.
func (p *Parser) Split(script string) types.SchemaScript {
	var statements []types.Statement
	start := 0

	walk(script, func(i, depth int) bool {
		if script[i] == ';' && depth <= 0 {
			statements = p.appendStatement(statements, script[start:i])
			start = i + 1
		}
		return true
	})
	statements = p.appendStatement(statements, script[start:])

	return types.SchemaScript{Statements: statements}
}

func (p *Parser) appendStatement(statements []types.Statement, fragment string) []types.Statement {
	text := strings.TrimSpace(fragment)
	code := strings.TrimSpace(StripComments(text))
	if code == "" {
		return statements
	}
	return append(statements, types.Statement{
		Kind:     Classify(code),
		Text:     text,
		Position: len(statements),
	})
}

// Classify returns the statement kind of comment-free statement text
func Classify(code string) types.StatementKind {
	switch {
	case tableKindRe.MatchString(code):
		return types.TableCreate
	case indexKindRe.MatchString(code):
		return types.IndexCreate
	default:
		return types.Other
	}
}

// HasIfNotExists reports whether a CREATE TABLE or CREATE INDEX statement uses the
// create-if-absent shorthand
func HasIfNotExists(code string) bool {
	return ifNotExistsRe.MatchString(strings.TrimSpace(code))
}

// ExtractTable returns the first CREATE TABLE statement for name. The second return value is
// false when the script does not define the table.
func (p *Parser) ExtractTable(script, name string) (*types.TableDefinition, bool) {
	want := CleanIdentifier(name)
	for _, stmt := range p.Split(script).OfKind(types.TableCreate) {
		def, err := p.ParseTable(stmt.Text)
		if err != nil {
			continue
		}
		if strings.EqualFold(def.Name, want) {
			return def, true
		}
	}
	return nil, false
}

// ExtractTables returns every parseable CREATE TABLE statement in script order. Statements that
// look like table creation but cannot be decomposed are returned as script structure errors.
func (p *Parser) ExtractTables(script string) ([]types.TableDefinition, []error) {
	var tables []types.TableDefinition
	var problems []error

	for _, stmt := range p.Split(script).OfKind(types.TableCreate) {
		def, err := p.ParseTable(stmt.Text)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		tables = append(tables, *def)
	}

	return tables, problems
}

// ParseTable decomposes a single CREATE TABLE statement
func (p *Parser) ParseTable(text string) (*types.TableDefinition, error) {
	code := strings.TrimSpace(StripComments(text))

	matches := tableHeadRe.FindStringSubmatch(code)
	if len(matches) < 2 {
		return nil, errors.NewScriptStructureError(abbreviate(code), "missing table name")
	}
	name := CleanIdentifier(matches[1])

	open, closing := OuterParens(code)
	if open < 0 {
		return nil, errors.NewScriptStructureError("table "+name, "missing column list")
	}
	if closing < 0 {
		return nil, errors.NewScriptStructureError("table "+name, "unbalanced parentheses")
	}

	return &types.TableDefinition{
		Name:      name,
		Head:      strings.TrimSpace(code[:open]),
		Body:      code[open+1 : closing],
		Statement: code,
	}, nil
}

// ExtractIndexes returns every index definition in the script. A name defined twice keeps the
// last definition and is recorded in Duplicates.
func (p *Parser) ExtractIndexes(script string) types.IndexSet {
	var set types.IndexSet
	position := make(map[string]int)
	duplicate := make(map[string]bool)

	for _, stmt := range p.Split(script).OfKind(types.IndexCreate) {
		def, err := p.ParseIndex(stmt.Text)
		if err != nil {
			set.Malformed = append(set.Malformed, stmt.Text)
			continue
		}

		key := strings.ToLower(def.Name)
		if i, exists := position[key]; exists {
			if !duplicate[key] {
				duplicate[key] = true
				set.Duplicates = append(set.Duplicates, def.Name)
			}
			set.Indexes[i] = *def
			continue
		}
		position[key] = len(set.Indexes)
		set.Indexes = append(set.Indexes, *def)
	}

	return set
}

// ParseIndex decomposes a single CREATE INDEX statement
func (p *Parser) ParseIndex(text string) (*types.IndexDefinition, error) {
	code := strings.TrimSpace(StripComments(text))

	matches := indexRe.FindStringSubmatch(code)
	if len(matches) < 4 {
		return nil, fmt.Errorf("missing index name or target table: %s", abbreviate(code))
	}

	open, closing := OuterParens(code)
	if open < 0 || closing < 0 {
		return nil, fmt.Errorf("unbalanced column list: %s", abbreviate(code))
	}

	var columns []string
	for _, col := range SplitTopLevel(code[open+1:closing], ',') {
		if col = strings.TrimSpace(col); col != "" {
			columns = append(columns, col)
		}
	}

	return &types.IndexDefinition{
		Name:      CleanIdentifier(matches[2]),
		Table:     CleanIdentifier(matches[3]),
		Columns:   columns,
		Unique:    strings.TrimSpace(matches[1]) != "",
		Statement: code,
	}, nil
}

// CleanIdentifier removes identifier quoting
func CleanIdentifier(id string) string {
	id = strings.TrimSpace(id)
	id = strings.Trim(id, "\"`")
	id = strings.TrimPrefix(id, "[")
	id = strings.TrimSuffix(id, "]")
	return strings.TrimSpace(id)
}

// SplitTopLevel splits s on sep wherever sep is outside parentheses, quotes and comments
func SplitTopLevel(s string, sep byte) []string {
	var result []string
	start := 0

	walk(s, func(i, depth int) bool {
		if s[i] == sep && depth == 0 {
			result = append(result, s[start:i])
			start = i + 1
		}
		return true
	})
	if start < len(s) {
		result = append(result, s[start:])
	}

	return result
}

// OuterParens returns the offsets of the first top-level opening parenthesis and its match
func OuterParens(code string) (int, int) {
	open, closing := -1, -1
	walk(code, func(i, depth int) bool {
		switch {
		case code[i] == '(' && open < 0 && depth == 0:
			open = i
		case code[i] == ')' && open >= 0 && depth == 0:
			closing = i
			return false
		}
		return true
	})
	return open, closing
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}
