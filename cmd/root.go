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

	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/version"
)

var (
	configFile   string // Config file path
	databaseType string
	dsn          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fleetschema",
	Short: "Provision the fleet management schema on SQLite, SQL Server or PostgreSQL",
	Long: `Provision the school bus fleet schema from one canonical SQLite script.

The script is split into statements, translated for the target database, and
executed in dependency order. On SQL Server and PostgreSQL foreign keys are
attached after every table exists. Indexes are created only when missing, and
the result is checked against the manifest of required tables and indexes.

When run without a subcommand, defaults to 'provision'.

Available commands:
- provision: Create missing tables, foreign keys and indexes, then validate
- validate: Check the live schema against the manifest without changing it
- plan: Print the translated statements without connecting
- init: Write a config file and manifest for this project
- goose: Run follow-up migrations with goose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProvision(cmd, args)
	},
	SilenceUsage: true,
}

// GetRootCmd returns the root command for embedding in other applications
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	fmt.Fprintf(os.Stderr, "%s\n", version.GetDisplayVersion())
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./fleetschema.config.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseType, "database", "", "Override database.type (sqlite, sqlserver, postgresql)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Override database.dsn")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show detailed processing information")
}
