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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/fleetschema/internal/database"
	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/state"
	"github.com/ocomsoft/fleetschema/internal/types"
	"github.com/ocomsoft/fleetschema/internal/version"
)

var (
	versionOutputFormat string
	showBuildInfo       bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the release and build of this binary",
	Long: `Print the fleetschema release. With --build-info the output also carries the
values stamped in at link time, the SQLite driver this binary was built with and
the fingerprint of the built-in schema script.

Release builds set the metadata with ldflags:

  go build -ldflags "-X github.com/ocomsoft/fleetschema/internal/version.Version=1.2.0 \
    -X github.com/ocomsoft/fleetschema/internal/version.GitCommit=$(git rev-parse --short HEAD) \
    -X github.com/ocomsoft/fleetschema/internal/version.BuildDate=$(date -u +%Y-%m-%d)"

The fingerprint matches the one recorded in checkpoint files written from the
built-in script, so it identifies which schema a binary provisions.

Examples:
  fleetschema version
  fleetschema version --build-info
  fleetschema version --format json`,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := versionInfo()

	switch versionOutputFormat {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "text":
		if !showBuildInfo {
			fmt.Fprintln(out, version.GetDisplayVersion())
			return nil
		}
		fmt.Fprintln(out, version.GetFullVersion())
		fmt.Fprintf(out, "sqlite driver: %s\n", info["sqliteDriver"])
		fmt.Fprintf(out, "schema fingerprint: %s\n", info["schemaFingerprint"])
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", versionOutputFormat)
	}
	return nil
}

// versionInfo extends the link-time build info with what this binary provisions
func versionInfo() map[string]string {
	info := version.GetBuildInfo()
	if driver, err := database.DriverName(types.DialectSQLite); err == nil {
		info["sqliteDriver"] = driver
	}
	info["schemaFingerprint"] = state.Fingerprint(schema.Script(), types.DialectSQLite)
	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionOutputFormat, "format", "f", "text",
		"Output format (text, json)")
	versionCmd.Flags().BoolVarP(&showBuildInfo, "build-info", "b", false,
		"Include link-time metadata, SQLite driver and schema fingerprint")
}
