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
package provisioner

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/fkutils"
	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/types"
)

const (
	PhaseTables      = "tables"
	PhaseConstraints = "constraints"
	PhaseIndexes     = "indexes"
)

// Step is one statement of a provisioning plan, already in the target dialect
type Step struct {
	Phase  string
	Object types.Object
	SQL    string
}

// Plan is the ordered statement list for one script, manifest and dialect
type Plan struct {
	Dialect     types.Dialect
	Tables      []Step
	Constraints []Step
	Indexes     []Step
	Warnings    []string
}

// Steps returns every step in execution order
func (p *Plan) Steps() []Step {
	steps := make([]Step, 0, len(p.Tables)+len(p.Constraints)+len(p.Indexes))
	steps = append(steps, p.Tables...)
	steps = append(steps, p.Constraints...)
	return append(steps, p.Indexes...)
}

// Plan builds the statements needed to provision script without touching a database. Each
// statement is translated exactly once here.
func (p *Provisioner) Plan(script string, manifest types.Manifest) (*Plan, error) {
	plan := &Plan{Dialect: p.provider.Dialect()}

	for _, stmt := range p.parser.Split(script).OfKind(types.Other) {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("ignoring statement %d: %s", stmt.Position, abbreviate(stmt.Text)))
	}

	tables, warnings, err := p.collectTables(script, manifest)
	if err != nil {
		return nil, err
	}
	plan.Warnings = append(plan.Warnings, warnings...)

	for i := range tables {
		strip := fkutils.StripForeignKeys(tables[i].Name, tables[i].Body)
		for _, clause := range strip.Malformed {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("skipping malformed foreign key on %s: %s", tables[i].Name, abbreviate(clause)))
		}
		tables[i].ForeignKeys = strip.Constraints
		if len(strip.Constraints) > 0 {
			p.logf("Foreign keys on %s: %s\n", tables[i].Name, strings.Join(fkutils.ConstraintNames(strip.Constraints), ", "))
		}
		if p.provider.DefersForeignKeys() {
			tables[i].Body = strip.Body
			tables[i].Statement = tables[i].Head + " (" + strip.Body + ")" + tableTail(tables[i].Statement)
		}
	}

	ordered, err := p.analyzer.OrderTables(tables)
	if err != nil {
		if !errors.IsCircularDependencyError(err) {
			return nil, err
		}
		plan.Warnings = append(plan.Warnings, err.Error()+"; using manifest order")
	}

	for i := range ordered {
		table := &ordered[i]
		sql, err := p.provider.GenerateCreateTable(table)
		if err != nil {
			return nil, err
		}
		plan.Tables = append(plan.Tables, Step{
			Phase:  PhaseTables,
			Object: types.Object{Kind: types.ObjectTable, Name: table.Name},
			SQL:    sql,
		})

		for _, fk := range table.ForeignKeys {
			if sql := p.provider.GenerateForeignKeyConstraint(fk); sql != "" {
				plan.Constraints = append(plan.Constraints, Step{
					Phase:  PhaseConstraints,
					Object: types.Object{Kind: types.ObjectConstraint, Name: fk.Name(), Table: fk.Table},
					SQL:    sql,
				})
			}
		}
	}

	set := p.parser.ExtractIndexes(script)
	if len(set.Duplicates) > 0 {
		if p.opts.StrictDuplicateIndexes {
			return nil, errors.NewDuplicateIndexError(set.Duplicates)
		}
		for _, name := range set.Duplicates {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("index %s is defined more than once; the last definition is used", name))
		}
	}
	for _, text := range set.Malformed {
		plan.Warnings = append(plan.Warnings, "skipping malformed index statement: "+abbreviate(text))
	}

	for i := range set.Indexes {
		index := &set.Indexes[i]
		sql, err := p.provider.GenerateCreateIndex(index)
		if err != nil {
			return nil, err
		}
		plan.Indexes = append(plan.Indexes, Step{
			Phase:  PhaseIndexes,
			Object: types.Object{Kind: types.ObjectIndex, Name: index.Name, Table: index.Table},
			SQL:    sql,
		})
	}

	return plan, nil
}

// collectTables returns the manifest tables in manifest order followed by any other script
// tables in script order. Every manifest table must be defined by the script and parse; a table
// statement that cannot be parsed and is not in the manifest is only reported as a warning.
func (p *Provisioner) collectTables(script string, manifest types.Manifest) ([]types.TableDefinition, []string, error) {
	defined, problems := p.parser.ExtractTables(script)

	required := make(map[string]bool, len(manifest.Tables))
	for _, name := range manifest.Tables {
		required[strings.ToLower(name)] = true
	}

	var err error
	var warnings []string
	broken := make(map[string]bool)
	for _, problem := range problems {
		if name, ok := problemTable(problem); ok && required[name] {
			broken[name] = true
			err = multierr.Append(err, problem)
			continue
		}
		warnings = append(warnings, "skipping table statement: "+problem.Error())
	}

	byName := make(map[string]int, len(defined))
	for i, def := range defined {
		if _, exists := byName[strings.ToLower(def.Name)]; !exists {
			byName[strings.ToLower(def.Name)] = i
		}
	}

	var tables []types.TableDefinition
	used := make(map[int]bool)
	for _, name := range manifest.Tables {
		i, ok := byName[strings.ToLower(name)]
		if !ok {
			if !broken[strings.ToLower(name)] {
				err = multierr.Append(err, errors.NewScriptStructureError("table "+name, "required table is not defined in the script"))
			}
			continue
		}
		if !used[i] {
			used[i] = true
			tables = append(tables, defined[i])
		}
	}
	for i, def := range defined {
		if !used[i] && byName[strings.ToLower(def.Name)] == i {
			tables = append(tables, def)
		}
	}

	if err != nil {
		return nil, nil, err
	}
	return tables, warnings, nil
}

// problemTable returns the lower-case table name a parse problem refers to, if it names one
func problemTable(problem error) (string, bool) {
	se, ok := errors.AsScriptStructure(problem)
	if !ok || !strings.HasPrefix(se.Object, "table ") {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(se.Object, "table ")), true
}

// tableTail returns the text after the column list of a CREATE TABLE statement, such as
// WITHOUT ROWID or STRICT
func tableTail(statement string) string {
	_, closing := parser.OuterParens(statement)
	if closing < 0 {
		return ""
	}
	return statement[closing+1:]
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}
