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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/provisioner"
	"github.com/ocomsoft/fleetschema/internal/state"
)

var (
	noResume bool
	reset    bool
)

// provisionCmd represents the provision command
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create missing tables, foreign keys and indexes, then validate",
	Long: `Provision the schema on the configured database.

Tables are created when none of the manifest tables exist yet. If any exist,
table creation is skipped, unless the checkpoint file shows that an earlier
run with the same script stopped part way; then only the missing tables are
created. Foreign keys (SQL Server and PostgreSQL) and indexes are added only
when absent. The run ends by checking every manifest table and index.

Examples:
  fleetschema provision
  fleetschema provision --database sqlserver --dsn "sqlserver://sa:pw@localhost?database=fleet"
  fleetschema provision --reset`,
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	for _, c := range []*cobra.Command{rootCmd, provisionCmd} {
		c.Flags().BoolVar(&noResume, "no-resume", false, "Ignore the checkpoint file for this run")
		c.Flags().BoolVar(&reset, "reset", false, "Delete the checkpoint file before running")
	}
}

func runProvision(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	components, err := InitializeComponents()
	if err != nil {
		return err
	}
	cfg := components.Config

	opts := provisioner.Options{
		Verbose:                cfg.Output.Verbose,
		Out:                    os.Stdout,
		StrictDuplicateIndexes: cfg.Provisioning.StrictDuplicateIndexes,
		StatementTimeout:       cfg.Provisioning.StatementTimeout,
	}

	checkpoints := state.New(cfg.Provisioning.CheckpointFile, cfg.Output.Verbose)
	if reset {
		if err := checkpoints.Clear(); err != nil {
			return err
		}
	}
	if cfg.Provisioning.Resume && !noResume {
		opts.Checkpoint = checkpoints
		if cfg.Output.Verbose {
			fmt.Printf("%s Checkpoint file: %s\n", blue("▶"), checkpoints.GetCheckpointPath())
		}
	}

	db, err := openDatabase(ctx, components)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("%s Provisioning %s schema...\n", blue("▶"), components.Dialect)

	report, err := provisioner.New(components.Provider, opts).Run(ctx, db, components.Script, components.Manifest)
	printReport(report, err)
	return err
}
