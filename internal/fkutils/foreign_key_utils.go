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
package fkutils

import (
	"regexp"
	"strings"

	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/types"
)

const identifier = "[\\w.\"\\[\\]`]+"

var (
	// tableConstraintRe matches a table-level clause that opens with FOREIGN KEY, optionally named
	tableConstraintRe = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+` + identifier + `\s+)?FOREIGN\s+KEY\b`)

	foreignKeyRe = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+` + identifier + `\s+)?FOREIGN\s+KEY\s*\(([^()]*)\)\s*REFERENCES\s+(` +
		identifier + `)\s*\(([^()]*)\)\s*(.*)$`)

	// columnReferenceRe matches a column-level REFERENCES suffix and any referential actions after it
	columnReferenceRe = regexp.MustCompile(`(?is)\s+(?:CONSTRAINT\s+` + identifier + `\s+)?REFERENCES\s+(` + identifier +
		`)(?:\s*\(([^()]*)\))?((?:\s+ON\s+(?:DELETE|UPDATE)\s+(?:CASCADE|RESTRICT|NO\s+ACTION|SET\s+NULL|SET\s+DEFAULT))*)`)

	nonColumnRe = regexp.MustCompile(`(?is)^(?:CONSTRAINT|PRIMARY\s+KEY|UNIQUE|CHECK|FOREIGN\s+KEY)\b`)
)

// StripResult is the outcome of removing foreign keys from a table body
type StripResult struct {
	// Body is the column-definition text without foreign key clauses
	Body string
	// Constraints are the parsed keys in source order
	Constraints []types.ForeignKeyConstraint
	// Malformed holds removed clauses that could not be parsed into a constraint
	Malformed []string
}

// StripForeignKeys removes FOREIGN KEY clauses and column-level REFERENCES suffixes from the body
// of table and returns the parsed constraints. A body without foreign keys is returned unchanged.
func StripForeignKeys(table, body string) StripResult {
	var result StripResult
	var kept []string
	changed := false

	for _, clause := range parser.SplitTopLevel(body, ',') {
		code := strings.TrimSpace(parser.StripComments(clause))

		switch {
		case tableConstraintRe.MatchString(code):
			changed = true
			if fk, ok := parseTableConstraint(table, code); ok {
				result.Constraints = append(result.Constraints, fk)
			} else {
				result.Malformed = append(result.Malformed, code)
			}

		case !nonColumnRe.MatchString(code) && columnReferenceRe.MatchString(parser.MaskLiterals(clause)):
			changed = true
			// Offsets from the masked text apply to clause; a REFERENCES inside a literal is not a key
			loc := columnReferenceRe.FindStringSubmatchIndex(parser.MaskLiterals(clause))
			if fk, ok := parseColumnReference(table, code, clause, loc); ok {
				result.Constraints = append(result.Constraints, fk)
			} else {
				result.Malformed = append(result.Malformed, code)
			}
			kept = append(kept, clause[:loc[0]]+clause[loc[1]:])

		default:
			kept = append(kept, clause)
		}
	}

	if !changed {
		result.Body = body
		return result
	}
	result.Body = strings.Join(kept, ",")
	return result
}

func parseTableConstraint(table, code string) (types.ForeignKeyConstraint, bool) {
	matches := foreignKeyRe.FindStringSubmatch(code)
	if len(matches) < 5 {
		return types.ForeignKeyConstraint{}, false
	}

	columns := splitColumns(matches[1])
	refColumns := splitColumns(matches[3])
	// Composite keys cannot be expressed as a single-column descriptor
	if len(columns) != 1 || len(refColumns) != 1 {
		return types.ForeignKeyConstraint{}, false
	}

	return types.ForeignKeyConstraint{
		Table:            parser.CleanIdentifier(table),
		Column:           columns[0],
		ReferencedTable:  parser.CleanIdentifier(matches[2]),
		ReferencedColumn: refColumns[0],
		Actions:          normalizeActions(matches[4]),
	}, true
}

func parseColumnReference(table, code, clause string, loc []int) (types.ForeignKeyConstraint, bool) {
	fields := strings.Fields(code)
	if len(fields) == 0 || loc[4] < 0 || loc[5] <= loc[4] {
		return types.ForeignKeyConstraint{}, false
	}
	refColumns := splitColumns(clause[loc[4]:loc[5]])
	if len(refColumns) != 1 {
		return types.ForeignKeyConstraint{}, false
	}

	var actions string
	if loc[6] >= 0 {
		actions = normalizeActions(clause[loc[6]:loc[7]])
	}

	return types.ForeignKeyConstraint{
		Table:            parser.CleanIdentifier(table),
		Column:           parser.CleanIdentifier(fields[0]),
		ReferencedTable:  parser.CleanIdentifier(clause[loc[2]:loc[3]]),
		ReferencedColumn: refColumns[0],
		Actions:          actions,
	}, true
}

func splitColumns(list string) []string {
	var columns []string
	for _, part := range strings.Split(list, ",") {
		if col := parser.CleanIdentifier(part); col != "" {
			columns = append(columns, col)
		}
	}
	return columns
}

// normalizeActions keeps only ON DELETE / ON UPDATE clauses, collapsing whitespace
func normalizeActions(tail string) string {
	tail = strings.Join(strings.Fields(tail), " ")
	upper := strings.ToUpper(tail)
	if idx := strings.Index(upper, "ON "); idx >= 0 {
		return strings.ToUpper(tail[idx:])
	}
	return ""
}

// ConstraintNames returns the constraint names of fks in order
func ConstraintNames(fks []types.ForeignKeyConstraint) []string {
	names := make([]string, 0, len(fks))
	for _, fk := range fks {
		names = append(names, fk.Name())
	}
	return names
}
