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
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ocomsoft/fleetschema/internal/provisioner"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Migration is a goose migration built from a provisioning plan
type Migration struct {
	Filename string
	UpSQL    string
	DownSQL  string
}

type Writer struct {
	verbose bool
}

func New(verbose bool) *Writer {
	return &Writer{
		verbose: verbose,
	}
}

// RenderScript formats a plan as a runnable script. SQL Server statements are separated into
// batches with GO since each one may start with an IF guard.
func (w *Writer) RenderScript(plan *provisioner.Plan) string {
	terminator := ";\n\n"
	if plan.Dialect == types.DialectSQLServer {
		terminator = "\nGO\n\n"
	}

	var sb strings.Builder
	for _, step := range plan.Steps() {
		sb.WriteString(fmt.Sprintf("-- %s\n%s%s", step.Object, step.SQL, terminator))
	}
	return sb.String()
}

// BuildMigration wraps every plan step in its own goose statement block. The down section drops
// the tables in reverse creation order so that referencing tables go first.
func (w *Writer) BuildMigration(plan *provisioner.Plan, quote func(string) string, now time.Time) *Migration {
	var up strings.Builder
	up.WriteString("-- +goose Up\n")
	for _, step := range plan.Steps() {
		up.WriteString(fmt.Sprintf("-- %s\n", step.Object))
		up.WriteString("-- +goose StatementBegin\n")
		up.WriteString(step.SQL + ";\n")
		up.WriteString("-- +goose StatementEnd\n")
	}

	var down strings.Builder
	down.WriteString("-- +goose Down\n")
	down.WriteString("-- +goose StatementBegin\n")
	for i := len(plan.Tables) - 1; i >= 0; i-- {
		down.WriteString(fmt.Sprintf("DROP TABLE IF EXISTS %s;\n", quote(plan.Tables[i].Object.Name)))
	}
	down.WriteString("-- +goose StatementEnd\n")

	return &Migration{
		Filename: fmt.Sprintf("%s_fleet_schema_%s.sql", now.UTC().Format("20060102150405"), plan.Dialect),
		UpSQL:    up.String(),
		DownSQL:  down.String(),
	}
}

// WriteMigration writes migration into dir and returns the file path
func (w *Writer) WriteMigration(migration *Migration, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, migration.Filename)
	content := migration.UpSQL + "\n" + migration.DownSQL

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}

	if w.verbose {
		fmt.Printf("Written migration to: %s\n", path)
	}

	return path, nil
}
