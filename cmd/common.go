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
	"strings"

	"github.com/fatih/color"

	"github.com/ocomsoft/fleetschema/internal/config"
	"github.com/ocomsoft/fleetschema/internal/database"
	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/manifest"
	"github.com/ocomsoft/fleetschema/internal/providers"
	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/types"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Components holds everything a command needs for one dialect
type Components struct {
	Config   *config.Config
	Dialect  types.Dialect
	Provider providers.Provider
	Script   string
	Manifest types.Manifest
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if databaseType != "" {
		cfg.Database.Type = databaseType
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	color.NoColor = color.NoColor || !cfg.Output.ColorEnabled

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitializeComponents loads config, script and manifest and picks the provider
func InitializeComponents() (*Components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	provider, err := providers.NewProvider(dialect)
	if err != nil {
		return nil, err
	}

	script, err := schema.Load(cfg.Schema.ScriptFile)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(cfg.Schema.ManifestFile)
	if err != nil {
		return nil, err
	}

	if cfg.Output.Verbose {
		fmt.Printf("%s Database type: %s\n", blue("▶"), dialect)
		if cfg.Schema.ScriptFile != "" {
			fmt.Printf("%s Schema script: %s\n", blue("▶"), cfg.Schema.ScriptFile)
		} else {
			fmt.Printf("%s Schema script: built-in\n", blue("▶"))
		}
	}

	return &Components{
		Config:   cfg,
		Dialect:  dialect,
		Provider: provider,
		Script:   script,
		Manifest: m,
	}, nil
}

// openDatabase connects using the configured connection settings
func openDatabase(ctx context.Context, c *Components) (*sql.DB, error) {
	connStr, err := c.Config.ConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}
	return database.Open(ctx, c.Dialect, connStr)
}

// printReport writes a human-readable summary of a run
func printReport(report *types.Report, err error) {
	if report == nil {
		return
	}

	if len(report.Transitions) > 0 {
		var states []string
		for _, s := range report.Transitions {
			states = append(states, string(s))
		}
		fmt.Printf("%s States: %s\n", blue("▶"), strings.Join(states, " → "))
	}

	for _, obj := range report.Created {
		fmt.Printf("  %s created %s\n", green("+"), obj)
	}
	if verbose {
		for _, obj := range report.Skipped {
			fmt.Printf("  %s exists  %s\n", cyan("="), obj)
		}
	}
	for _, w := range report.Warnings {
		fmt.Printf("  %s %s\n", yellow("!"), w)
	}
	for _, obj := range report.Missing {
		fmt.Printf("  %s missing %s\n", red("✗"), obj)
	}

	switch {
	case report.OK:
		fmt.Printf("%s Schema ready on %s (%d created, %d already present)\n",
			green("✓"), report.Dialect, len(report.Created), len(report.Skipped))
	case errors.IsSchemaIncompleteError(err):
		fmt.Printf("%s Schema incomplete on %s: %d objects missing\n", red("✗"), report.Dialect, len(report.Missing))
	default:
		last := types.StateUnchecked
		if n := len(report.Transitions); n >= 2 {
			last = report.Transitions[n-2]
		}
		fmt.Printf("%s Provisioning failed after state %s: %s\n", red("✗"), last, report.FailureReason)
	}
}
