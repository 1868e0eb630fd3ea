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
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/provisioner"
	"github.com/ocomsoft/fleetschema/internal/writer"
)

var (
	planOutput    string
	planMigration bool
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the translated statements without connecting",
	Long: `Build the provisioning plan for the configured database type and print it as
a SQL script: tables in dependency order, then foreign keys, then indexes.
No connection is made and no existence checks are applied.

With --migration the plan is written to the migrations directory as a goose
migration instead, so it can be applied with 'fleetschema goose up'.

Examples:
  fleetschema plan --database sqlserver
  fleetschema plan --database postgresql --output fleet_pg.sql
  fleetschema plan --database postgresql --migration`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Write the script to a file instead of stdout")
	planCmd.Flags().BoolVar(&planMigration, "migration", false, "Write the plan as a goose migration")
}

func runPlan(_ *cobra.Command, _ []string) error {
	components, err := InitializeComponents()
	if err != nil {
		return err
	}
	cfg := components.Config

	p := provisioner.New(components.Provider, provisioner.Options{
		Verbose:                cfg.Output.Verbose,
		Out:                    os.Stderr,
		StrictDuplicateIndexes: cfg.Provisioning.StrictDuplicateIndexes,
	})
	plan, err := p.Plan(components.Script, components.Manifest)
	if err != nil {
		return err
	}

	for _, w := range plan.Warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow("!"), w)
	}

	w := writer.New(cfg.Output.Verbose)

	if planMigration {
		migration := w.BuildMigration(plan, components.Provider.QuoteName, time.Now())
		path, err := w.WriteMigration(migration, cfg.Migration.Directory)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s Created migration %s\n", green("✓"), path)
		return nil
	}

	script := w.RenderScript(plan)
	if planOutput == "" {
		fmt.Print(script)
		return nil
	}
	if err := os.WriteFile(planOutput, []byte(script), 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s Wrote %d statements to %s\n", green("✓"), len(plan.Steps()), planOutput)
	return nil
}
