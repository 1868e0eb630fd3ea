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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ocomsoft/fleetschema/internal/schema"
	"github.com/ocomsoft/fleetschema/internal/state"
	"github.com/ocomsoft/fleetschema/internal/types"
)

func runVersionWith(t *testing.T, format string, buildInfo bool) (string, error) {
	t.Helper()
	oldFormat, oldBuild := versionOutputFormat, showBuildInfo
	t.Cleanup(func() {
		versionOutputFormat, showBuildInfo = oldFormat, oldBuild
		versionCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionOutputFormat, showBuildInfo = format, buildInfo
	err := runVersion(versionCmd, nil)
	return buf.String(), err
}

func TestVersion_JSONIncludesSchemaFingerprint(t *testing.T) {
	out, err := runVersionWith(t, "json", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	expected := state.Fingerprint(schema.Script(), types.DialectSQLite)
	if info["schemaFingerprint"] != expected {
		t.Errorf("Expected fingerprint %s, got %s", expected, info["schemaFingerprint"])
	}
	for _, key := range []string{"version", "gitCommit", "buildDate", "sqliteDriver"} {
		if info[key] == "" {
			t.Errorf("Version info missing %s", key)
		}
	}
}

func TestVersion_TextBuildInfo(t *testing.T) {
	out, err := runVersionWith(t, "text", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, part := range []string{"fleetschema v", "sqlite driver: ", "schema fingerprint: "} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected %q in output:\n%s", part, out)
		}
	}

	out, err = runVersionWith(t, "text", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(out, "fingerprint") {
		t.Errorf("Plain output should only show the release: %s", out)
	}
}

func TestVersion_UnknownFormat(t *testing.T) {
	if _, err := runVersionWith(t, "yaml", false); err == nil {
		t.Error("Expected error for unknown format")
	}
}
