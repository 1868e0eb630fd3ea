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
package manifest

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Default returns the objects the fleet application requires
func Default() types.Manifest {
	return types.Manifest{
		Tables: []string{
			"Vehicles",
			"Drivers",
			"Routes",
			"Activities",
			"Fuel",
			"Maintenance",
			"SchoolCalendar",
			"ActivitySchedule",
			"TimeCard",
		},
		Indexes: []string{
			"idx_routes_date",
			"idx_routes_driver",
			"idx_routes_vehicle",
			"idx_activities_date",
			"idx_fuel_vehicle",
			"idx_maintenance_date",
			"idx_calendar_date",
			"idx_calendar_enddate",
			"idx_calendar_category",
			"idx_schedule_date",
			"idx_schedule_driver",
			"idx_schedule_vehicle",
			"idx_timecard_date",
			"idx_timecard_daytype",
			"idx_timecard_driver",
		},
	}
}

// Load reads a manifest file, or returns the default manifest when path is empty
func Load(path string) (types.Manifest, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Manifest{}, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return types.Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := Validate(m); err != nil {
		return types.Manifest{}, err
	}
	return m, nil
}

// Validate reports empty and repeated names. Every problem is returned.
func Validate(m types.Manifest) error {
	var err error
	if len(m.Tables) == 0 {
		err = multierr.Append(err, errors.NewValidationError("tables", "at least one table is required"))
	}
	err = multierr.Append(err, checkNames("tables", m.Tables))
	err = multierr.Append(err, checkNames("indexes", m.Indexes))
	return err
}

func checkNames(field string, names []string) error {
	var err error
	seen := make(map[string]bool)
	for i, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		switch {
		case key == "":
			err = multierr.Append(err, errors.NewValidationError(fmt.Sprintf("%s[%d]", field, i), "empty name"))
		case seen[key]:
			err = multierr.Append(err, errors.NewValidationError(fmt.Sprintf("%s[%d]", field, i), "duplicate name "+name))
		}
		seen[key] = true
	}
	return err
}

// Save writes m as YAML to path
func Save(path string, m types.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	content := "# Tables and indexes that must exist after provisioning\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
