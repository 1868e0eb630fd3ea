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
	"database/sql"
	"fmt"
	"strconv"

	goose "github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/database"
)

// gooseCmd represents the goose command
var gooseCmd = &cobra.Command{
	Use:   "goose",
	Short: "Run follow-up migrations with goose",
	Long: `Run goose migrations against the provisioned database.

The connection and the migrations directory come from the same configuration
as provision. Provision the base schema first; goose then tracks any later
changes in its own version table.

Available subcommands:
  up          Migrate the DB to the most recent version available
  up-by-one   Migrate the DB up by 1
  up-to       Migrate the DB to a specific VERSION
  down        Roll back the version by 1
  down-to     Roll back to a specific VERSION
  redo        Re-run the latest migration
  reset       Roll back all migrations
  status      Print the status of all migrations
  version     Print the current version of the database
  create      Create a new migration file
  fix         Apply sequential ordering to migrations`,
}

type gooseAction struct {
	name  string
	short string
	args  int
	run   func(ctx context.Context, db *sql.DB, dir string, args []string) error
}

var gooseActions = []gooseAction{
	{name: "up", short: "Migrate the DB to the most recent version available",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.UpContext(ctx, db, dir)
		}},
	{name: "up-by-one", short: "Migrate the DB up by 1",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.UpByOneContext(ctx, db, dir)
		}},
	{name: "up-to", short: "Migrate the DB to a specific VERSION", args: 1,
		run: func(ctx context.Context, db *sql.DB, dir string, args []string) error {
			v, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			return goose.UpToContext(ctx, db, dir, v)
		}},
	{name: "down", short: "Roll back the version by 1",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.DownContext(ctx, db, dir)
		}},
	{name: "down-to", short: "Roll back to a specific VERSION", args: 1,
		run: func(ctx context.Context, db *sql.DB, dir string, args []string) error {
			v, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			return goose.DownToContext(ctx, db, dir, v)
		}},
	{name: "redo", short: "Re-run the latest migration",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.RedoContext(ctx, db, dir)
		}},
	{name: "reset", short: "Roll back all migrations",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.ResetContext(ctx, db, dir)
		}},
	{name: "status", short: "Print the status of all migrations",
		run: func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
			return goose.StatusContext(ctx, db, dir)
		}},
	{name: "version", short: "Print the current version of the database",
		run: func(ctx context.Context, db *sql.DB, _ string, _ []string) error {
			v, err := goose.GetDBVersionContext(ctx, db)
			if err != nil {
				return err
			}
			fmt.Printf("goose: version %d\n", v)
			return nil
		}},
	{name: "create", short: "Create a new migration file", args: 1,
		run: func(_ context.Context, db *sql.DB, dir string, args []string) error {
			return goose.Create(db, dir, args[0], "sql")
		}},
	{name: "fix", short: "Apply sequential ordering to migrations",
		run: func(_ context.Context, _ *sql.DB, dir string, _ []string) error {
			return goose.Fix(dir)
		}},
}

func parseVersion(arg string) (int64, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version: %s", arg)
	}
	return v, nil
}

// runGooseCommand opens the configured database, points goose at the matching dialect and
// runs one action against the migrations directory
func runGooseCommand(cmd *cobra.Command, action gooseAction, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	components, err := InitializeComponents()
	if err != nil {
		return err
	}

	gooseDialect, err := database.GooseDialect(components.Dialect)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	fmt.Printf("%s Running goose %s...\n", blue("▶"), action.name)

	db, err := openDatabase(ctx, components)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := action.run(ctx, db, components.Config.Migration.Directory, args); err != nil {
		return fmt.Errorf("goose %s failed: %w", action.name, err)
	}

	fmt.Printf("%s goose %s completed successfully\n", green("✓"), action.name)
	return nil
}

func init() {
	rootCmd.AddCommand(gooseCmd)

	for _, action := range gooseActions {
		action := action
		sub := &cobra.Command{
			Use:   action.name,
			Short: action.short,
			Long:  action.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGooseCommand(cmd, action, args)
			},
		}
		if action.args > 0 {
			sub.Args = cobra.ExactArgs(action.args)
		}
		gooseCmd.AddCommand(sub)
	}
}
