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
package version

import (
	"strings"
	"testing"
)

func TestGetDisplayVersion(t *testing.T) {
	got := GetDisplayVersion()
	if got != "fleetschema v"+Version {
		t.Errorf("Unexpected display version %q", got)
	}
}

func TestGetFullVersion(t *testing.T) {
	got := GetFullVersion()
	if !strings.Contains(got, BuildDate) || !strings.Contains(got, GitCommit) {
		t.Errorf("Full version missing build details: %q", got)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	for _, key := range []string{"version", "buildDate", "gitCommit", "goVersion", "platform", "compiler"} {
		if info[key] == "" {
			t.Errorf("Build info missing %s", key)
		}
	}
}
