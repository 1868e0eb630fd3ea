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
package validator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Validator compares a live schema against a required-object manifest
type Validator struct {
	catalog catalog.Catalog
	verbose bool
	out     io.Writer
}

func New(c catalog.Catalog, verbose bool) *Validator {
	return &Validator{
		catalog: c,
		verbose: verbose,
		out:     os.Stdout,
	}
}

// SetOutput sets the destination of verbose output
func (v *Validator) SetOutput(w io.Writer) {
	v.out = w
}

// Validate returns a report listing every manifest object absent from the database. When
// anything is missing the report is not OK and the error is a SchemaIncompleteError naming
// all of them. Names are compared case-insensitively.
func (v *Validator) Validate(ctx context.Context, manifest types.Manifest) (*types.Report, error) {
	snapshot, err := catalog.Load(ctx, v.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema catalog: %w", err)
	}
	return v.Compare(snapshot, manifest)
}

// Compare checks manifest against an already loaded snapshot
func (v *Validator) Compare(snapshot *catalog.Snapshot, manifest types.Manifest) (*types.Report, error) {
	report := &types.Report{}
	var missingTables, missingIndexes []string

	for _, table := range manifest.Tables {
		if !snapshot.HasTable(table) {
			missingTables = append(missingTables, table)
			report.Missing = append(report.Missing, types.Object{Kind: types.ObjectTable, Name: table})
		}
	}
	for _, index := range manifest.Indexes {
		if !snapshot.HasIndex(index) {
			missingIndexes = append(missingIndexes, index)
			report.Missing = append(report.Missing, types.Object{Kind: types.ObjectIndex, Name: index})
		}
	}

	if v.verbose {
		fmt.Fprintf(v.out, "Validated %d tables and %d indexes, %d missing\n",
			len(manifest.Tables), len(manifest.Indexes), len(report.Missing))
	}

	if len(report.Missing) > 0 {
		report.State = types.StateFailed
		err := errors.NewSchemaIncompleteError(missingTables, missingIndexes)
		report.FailureReason = err.Error()
		return report, err
	}

	report.OK = true
	report.State = types.StateValidated
	return report, nil
}
