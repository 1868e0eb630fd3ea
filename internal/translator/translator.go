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
	"strings"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/types"
)

const identifier = "[\\w\"\\[\\]`]+"

var (
	columnRe     = regexp.MustCompile(`(?is)^(` + identifier + `)\s+(.*)$`)
	typeWordsRe  = regexp.MustCompile(`^([A-Za-z_]\w*)(?:\s+([A-Za-z_]\w*))?(?:\s+([A-Za-z_]\w*))?`)
	typeArgsRe   = regexp.MustCompile(`^\s*(\(\s*\d+\s*(?:,\s*\d+\s*)?\))`)
	identityRe   = regexp.MustCompile(`(?is)^\s*PRIMARY\s+KEY(?:\s+(?:ASC|DESC))?(?:\s+AUTOINCREMENT)?\b`)
	functionRe   = regexp.MustCompile(`\b([A-Za-z_][A-Za-z_0-9]*)\s*\(`)
	numberRe     = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
	constraintRe = regexp.MustCompile(`(?is)^(?:CONSTRAINT|PRIMARY\s+KEY|UNIQUE|CHECK|FOREIGN\s+KEY)\b`)

	// Column options understood by the rule tables. Anything else fails translation.
	notNullRe    = regexp.MustCompile(`(?i)^NOT\s+NULL\b`)
	nullRe       = regexp.MustCompile(`(?i)^NULL\b`)
	primaryKeyRe = regexp.MustCompile(`(?i)^PRIMARY\s+KEY(?:\s+(?:ASC|DESC)\b)?`)
	uniqueRe     = regexp.MustCompile(`(?i)^UNIQUE\b`)
	defaultRe    = regexp.MustCompile(`(?i)^DEFAULT\b\s*`)
	checkRe      = regexp.MustCompile(`(?i)^CHECK\s*\(`)
	collateRe    = regexp.MustCompile(`(?i)^COLLATE\s+(\w+)`)
	namedRe      = regexp.MustCompile(`(?i)^CONSTRAINT\s+(` + identifier + `)`)
	referencesRe = regexp.MustCompile(`(?is)^REFERENCES\s+(` + identifier + `)\s*\(([^(),]*)\)` +
		`((?:\s+ON\s+(?:DELETE|UPDATE)\s+(?:CASCADE|RESTRICT|NO\s+ACTION|SET\s+NULL|SET\s+DEFAULT))*)`)
)

// Translator rewrites embedded-engine DDL into a target dialect. Each statement must be
// translated exactly once; translated output is not valid input.
type Translator struct {
	dialect types.Dialect
	rules   *Rules
	parser  *parser.Parser
}

// New creates a translator for the target dialect. Targeting the embedded engine yields a
// translator that returns statements unchanged.
func New(dialect types.Dialect) (*Translator, error) {
	t := &Translator{
		dialect: dialect,
		parser:  parser.New(),
	}
	if dialect == types.DialectSQLite {
		return t, nil
	}

	rules, ok := RulesFor(dialect)
	if !ok {
		return nil, fmt.Errorf("no translation rules for dialect: %s", dialect)
	}
	t.rules = rules
	return t, nil
}

// MustNew is like New but panics when the dialect has no translation rules
func MustNew(dialect types.Dialect) *Translator {
	t, err := New(dialect)
	if err != nil {
		panic(err)
	}
	return t
}

// Dialect returns the target dialect
func (t *Translator) Dialect() types.Dialect {
	return t.dialect
}

// QuoteName quotes an identifier for the target dialect
func (t *Translator) QuoteName(name string) string {
	if t.rules == nil {
		return fmt.Sprintf(`"%s"`, name)
	}
	return t.rules.QuoteName(name)
}

// Translate rewrites a CREATE TABLE or CREATE INDEX statement for the target dialect
func (t *Translator) Translate(statement string) (string, error) {
	if t.rules == nil {
		return statement, nil
	}

	code := strings.TrimSpace(parser.StripComments(statement))
	switch parser.Classify(code) {
	case types.TableCreate:
		return t.translateTable(code)
	case types.IndexCreate:
		return t.translateIndex(code)
	default:
		return "", errors.NewTranslationError(string(t.dialect), "statement", code)
	}
}

func (t *Translator) translateTable(code string) (string, error) {
	def, err := t.parser.ParseTable(code)
	if err != nil {
		return "", err
	}

	_, closing := parser.OuterParens(code)
	if tail := strings.TrimSpace(code[closing+1:]); tail != "" {
		return "", errors.NewTranslationError(string(t.dialect), tail, code)
	}

	var defs []string
	for _, clause := range parser.SplitTopLevel(def.Body, ',') {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		var out string
		if constraintRe.MatchString(clause) {
			out, err = t.translateConstraint(clause, code)
		} else {
			out, err = t.translateColumn(clause, code)
		}
		if err != nil {
			return "", err
		}
		defs = append(defs, out)
	}

	var sql strings.Builder
	sql.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", t.rules.QuoteName(def.Name)))
	for i, d := range defs {
		sql.WriteString("    " + d)
		if i < len(defs)-1 {
			sql.WriteString(",")
		}
		sql.WriteString("\n")
	}
	sql.WriteString(")")

	if parser.HasIfNotExists(code) {
		return t.rules.TableGuard(def.Name, sql.String()), nil
	}
	return sql.String(), nil
}

// translateColumn maps the type, identity idiom and options of one column definition
func (t *Translator) translateColumn(clause, statement string) (string, error) {
	matches := columnRe.FindStringSubmatch(clause)
	if matches == nil {
		return "", errors.NewTranslationError(string(t.dialect), "column without type: "+clause, statement)
	}
	name := t.rules.QuoteName(parser.CleanIdentifier(matches[1]))

	token, mapping, rest, err := t.columnType(matches[2], statement)
	if err != nil {
		return "", err
	}

	var args string
	if loc := typeArgsRe.FindStringSubmatchIndex(rest); loc != nil {
		args = strings.Join(strings.Fields(rest[loc[2]:loc[3]]), "")
		rest = rest[loc[1]:]
	}

	var sqlType string
	if loc := identityRe.FindStringIndex(rest); token == "INTEGER" && loc != nil {
		sqlType = t.rules.Identity
		rest = rest[loc[1]:]
	} else {
		sqlType = mapping.Target
		if mapping.KeepArgs {
			if args == "" {
				args = mapping.DefaultArgs
			}
			sqlType += args
		}
	}

	masked := parser.MaskLiterals(rest)
	for _, re := range t.rules.Unsupported {
		if m := re.FindString(masked); m != "" {
			return "", errors.NewTranslationError(string(t.dialect), m, statement)
		}
	}

	options, err := t.translateOptions(rest, mapping, statement)
	if err != nil {
		return "", err
	}
	if options == "" {
		return fmt.Sprintf("%s %s", name, sqlType), nil
	}
	return fmt.Sprintf("%s %s %s", name, sqlType, options), nil
}

// columnType matches the longest run of up to three words that names a type in the rule table,
// so DOUBLE PRECISION maps as one type rather than as DOUBLE followed by an option
func (t *Translator) columnType(def, statement string) (string, TypeMapping, string, error) {
	loc := typeWordsRe.FindStringSubmatchIndex(def)
	if loc == nil {
		return "", TypeMapping{}, "", errors.NewTranslationError(string(t.dialect), "column type: "+def, statement)
	}

	var words []string
	for g := 1; g <= 3 && loc[2*g] >= 0; g++ {
		words = append(words, strings.ToUpper(def[loc[2*g]:loc[2*g+1]]))
	}
	for n := len(words); n > 0; n-- {
		token := strings.Join(words[:n], " ")
		if mapping, ok := t.rules.Types[token]; ok {
			return token, mapping, def[loc[2*n+1]:], nil
		}
	}
	return "", TypeMapping{}, "", errors.NewTranslationError(string(t.dialect), words[0], statement)
}

// translateOptions rewrites the column options that follow the type. Options are consumed one
// at a time and leftover text is a translation error, never copied through.
func (t *Translator) translateOptions(rest string, mapping TypeMapping, statement string) (string, error) {
	var parts []string
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return strings.Join(parts, " "), nil
		}

		var loc []int
		switch {
		case notNullRe.MatchString(rest):
			parts = append(parts, "NOT NULL")
			rest = rest[notNullRe.FindStringIndex(rest)[1]:]

		case nullRe.MatchString(rest):
			parts = append(parts, "NULL")
			rest = rest[nullRe.FindStringIndex(rest)[1]:]

		case primaryKeyRe.MatchString(rest):
			parts = append(parts, "PRIMARY KEY")
			rest = rest[primaryKeyRe.FindStringIndex(rest)[1]:]

		case uniqueRe.MatchString(rest):
			parts = append(parts, "UNIQUE")
			rest = rest[uniqueRe.FindStringIndex(rest)[1]:]

		case defaultRe.MatchString(rest):
			after := rest[defaultRe.FindStringIndex(rest)[1]:]
			end := expressionEnd(after, 0)
			expr := strings.TrimSpace(after[:end])
			if expr == "" {
				return "", errors.NewTranslationError(string(t.dialect), "DEFAULT without value", statement)
			}
			rewritten, err := t.rewriteExpression(expr, mapping, statement)
			if err != nil {
				return "", err
			}
			parts = append(parts, "DEFAULT "+rewritten)
			rest = after[end:]

		case checkRe.MatchString(rest):
			open := checkRe.FindStringIndex(rest)[1] - 1
			end := matchParen(rest, open)
			parts = append(parts, "CHECK "+strings.Join(strings.Fields(t.renameFunctions(rest[open:end])), " "))
			rest = rest[end:]

		case collateRe.MatchString(rest):
			loc = collateRe.FindStringSubmatchIndex(rest)
			collation := strings.ToUpper(rest[loc[2]:loc[3]])
			target, ok := t.rules.Collations[collation]
			if !ok {
				return "", errors.NewTranslationError(string(t.dialect), "COLLATE "+collation, statement)
			}
			if target != "" {
				parts = append(parts, "COLLATE "+target)
			}
			rest = rest[loc[1]:]

		case namedRe.MatchString(rest):
			loc = namedRe.FindStringSubmatchIndex(rest)
			parts = append(parts, "CONSTRAINT "+t.rules.QuoteName(parser.CleanIdentifier(rest[loc[2]:loc[3]])))
			rest = rest[loc[1]:]

		case referencesRe.MatchString(rest):
			loc = referencesRe.FindStringSubmatchIndex(rest)
			ref := fmt.Sprintf("REFERENCES %s (%s)",
				t.rules.QuoteName(parser.CleanIdentifier(rest[loc[2]:loc[3]])),
				t.rules.QuoteName(parser.CleanIdentifier(rest[loc[4]:loc[5]])))
			if actions := strings.Join(strings.Fields(rest[loc[6]:loc[7]]), " "); actions != "" {
				ref += " " + strings.ToUpper(actions)
			}
			parts = append(parts, ref)
			rest = rest[loc[1]:]

		default:
			return "", errors.NewTranslationError(string(t.dialect), strings.Fields(rest)[0], statement)
		}
	}
}

// translateConstraint carries a table-level constraint over, renaming functions in expressions
func (t *Translator) translateConstraint(clause, statement string) (string, error) {
	masked := parser.MaskLiterals(clause)
	for _, re := range t.rules.Unsupported {
		if m := re.FindString(masked); m != "" {
			return "", errors.NewTranslationError(string(t.dialect), m, statement)
		}
	}
	return strings.Join(strings.Fields(t.renameFunctions(clause)), " "), nil
}

func (t *Translator) rewriteExpression(expr string, mapping TypeMapping, statement string) (string, error) {
	key := strings.ToUpper(strings.Join(strings.Fields(expr), ""))

	if value, ok := mapping.Defaults[key]; ok {
		return value, nil
	}
	if strings.HasPrefix(expr, "'") || numberRe.MatchString(expr) {
		return expr, nil
	}
	if value, ok := t.rules.Expressions[key]; ok {
		return value, nil
	}
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		inner, err := t.rewriteExpression(strings.TrimSpace(expr[1:len(expr)-1]), mapping, statement)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	}
	return "", errors.NewTranslationError(string(t.dialect), "DEFAULT "+expr, statement)
}

// renameFunctions renames function calls outside string literals
func (t *Translator) renameFunctions(s string) string {
	if len(t.rules.Functions) == 0 {
		return s
	}

	var out strings.Builder
	last := 0
	for _, m := range functionRe.FindAllStringSubmatchIndex(parser.MaskLiterals(s), -1) {
		renamed, ok := t.rules.Functions[strings.ToUpper(s[m[2]:m[3]])]
		if !ok {
			continue
		}
		out.WriteString(s[last:m[2]])
		out.WriteString(renamed + "(")
		last = m[1]
	}
	out.WriteString(s[last:])
	return out.String()
}

func (t *Translator) translateIndex(code string) (string, error) {
	def, err := t.parser.ParseIndex(code)
	if err != nil {
		return "", errors.NewTranslationError(string(t.dialect), "index", code)
	}

	var columns []string
	for _, col := range def.Columns {
		fields := strings.Fields(col)
		if collateNoCase.MatchString(col) {
			col = collateNoCase.ReplaceAllString(col, "")
			fields = strings.Fields(col)
		}
		fields[0] = t.rules.QuoteName(parser.CleanIdentifier(fields[0]))
		columns = append(columns, strings.Join(fields, " "))
	}

	_, closing := parser.OuterParens(code)
	tail := strings.Join(strings.Fields(code[closing+1:]), " ")
	if tail != "" {
		tail = " " + t.renameFunctions(tail)
	}

	unique := ""
	if def.Unique {
		unique = "UNIQUE "
	}
	create := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)%s", unique,
		t.rules.QuoteName(def.Name), t.rules.QuoteName(def.Table), strings.Join(columns, ", "), tail)

	if parser.HasIfNotExists(code) {
		return t.rules.IndexGuard(def.Name, def.Table, create), nil
	}
	return create, nil
}

// expressionEnd returns the offset just past the default expression starting at start
func expressionEnd(s string, start int) int {
	if start >= len(s) {
		return start
	}
	i := start
	switch s[i] {
	case '\'':
		for i++; i < len(s); i++ {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i++
					continue
				}
				return i + 1
			}
		}
		return len(s)
	case '(':
		return matchParen(s, i)
	}

	for i < len(s) && (isWordByte(s[i]) || s[i] == '.' || s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] == ' ' {
		j++
	}
	if j < len(s) && s[j] == '(' {
		return matchParen(s, j)
	}
	return i
}

func matchParen(s string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			inQuote = !inQuote
		case inQuote:
		case s[i] == '(':
			depth++
		case s[i] == ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var ifNotExistsTargets = map[string]*regexp.Regexp{
	"TABLE": regexp.MustCompile(`(?i)^(CREATE\s+TABLE)\s+`),
	"INDEX": regexp.MustCompile(`(?i)^(CREATE\s+(?:UNIQUE\s+)?INDEX)\s+`),
}

// insertIfNotExists adds the native create-if-absent clause after CREATE TABLE or CREATE INDEX
func insertIfNotExists(create, object string) string {
	re := ifNotExistsTargets[object]
	loc := re.FindStringSubmatchIndex(create)
	if loc == nil {
		return create
	}
	return create[:loc[3]] + " IF NOT EXISTS " + create[loc[1]:]
}
