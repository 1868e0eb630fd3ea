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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/config"
	"github.com/ocomsoft/fleetschema/internal/manifest"
	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/types"
)

var (
	initManifestFile string
	initExportSchema string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file and manifest for this project",
	Long: `Set up a working directory for fleetschema.

This command:
- Writes fleetschema.config.yaml if it does not exist
- Writes the default manifest of required tables and indexes
- Optionally exports the built-in schema script for editing
- Creates the migrations/ directory used by the goose subcommands

Existing files are left untouched.

Examples:
  fleetschema init --database sqlserver
  fleetschema init --export-schema schema.sql`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initManifestFile, "manifest", "fleetschema.manifest.yaml", "Manifest file to write")
	initCmd.Flags().StringVar(&initExportSchema, "export-schema", "", "Write the built-in schema script to this path")
}

func runInit(_ *cobra.Command, _ []string) error {
	if verbose {
		color.Cyan("Initializing fleetschema")
		color.Cyan("========================")
	}

	cfg := config.DefaultConfig()
	if databaseType != "" {
		cfg.Database.Type = databaseType
	}
	if _, err := cfg.Dialect(); err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	cfg.Schema.ManifestFile = initManifestFile

	var created []string

	if !fileExists(initManifestFile) {
		if err := manifest.Save(initManifestFile, manifest.Default()); err != nil {
			return err
		}
		created = append(created, "Manifest: "+initManifestFile)
	} else if verbose {
		color.Yellow("Manifest already exists: %s\n", initManifestFile)
	}

	if initExportSchema != "" {
		cfg.Schema.ScriptFile = initExportSchema
		if !fileExists(initExportSchema) {
			if err := os.WriteFile(initExportSchema, []byte(schema.Script()), 0644); err != nil {
				return fmt.Errorf("failed to write schema script: %w", err)
			}
			created = append(created, "Schema script: "+initExportSchema)
		} else if verbose {
			color.Yellow("Schema script already exists: %s\n", initExportSchema)
		}
	}

	if err := os.MkdirAll(cfg.Migration.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}

	configPath := config.GetConfigPath()
	exists := config.ConfigExists()
	if configFile != "" {
		configPath = configFile
		exists = fileExists(configPath)
	}
	if !exists {
		if err := cfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		created = append(created, "Config file: "+configPath)
	} else {
		color.Yellow("Project already initialized. Config exists at: %s\n", configPath)
	}

	if len(created) > 0 {
		color.Green("✅ fleetschema initialized\n\n")
		color.Green("Created:\n")
		for _, c := range created {
			color.Cyan("  - %s\n", c)
		}
	}

	color.Blue("\nNext steps:\n")
	color.White("  1. Set the connection details in %s\n", configPath)
	if cfg.Database.Type == string(types.DialectSQLite) {
		color.White("  2. Run 'fleetschema provision' to create %s\n", cfg.Database.Path)
	} else {
		color.White("  2. Run 'fleetschema plan' to review the %s statements\n", cfg.Database.Type)
		color.White("  3. Run 'fleetschema provision'\n")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
