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
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"
	yaml "gopkg.in/yaml.v3"

	"github.com/ocomsoft/fleetschema/internal/types"
)

const DefaultCheckpointFile = ".fleetschema_state.yaml"

// Manager persists the provisioning checkpoint used to resume a failed run
type Manager struct {
	path    string
	verbose bool
}

func New(path string, verbose bool) *Manager {
	if path == "" {
		path = DefaultCheckpointFile
	}
	return &Manager{
		path:    path,
		verbose: verbose,
	}
}

// Fingerprint returns the hash that ties a checkpoint to one script and dialect
func Fingerprint(script string, dialect types.Dialect) string {
	return fmt.Sprintf("%016x", xxh3.HashString(string(dialect)+"\x00"+script))
}

func (m *Manager) GetCheckpointPath() string {
	return m.path
}

// Load returns the stored checkpoint, or nil when none has been written
func (m *Manager) Load() (*types.Checkpoint, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			if m.verbose {
				fmt.Println("No provisioning checkpoint found")
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp types.Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", m.path, err)
	}

	if m.verbose {
		fmt.Printf("Loaded checkpoint from %s (state %s)\n", m.path, cp.State)
	}

	return &cp, nil
}

// Save writes cp, stamping the update time
func (m *Manager) Save(cp types.Checkpoint) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}

	cp.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if m.verbose {
		fmt.Printf("Saved checkpoint to %s (state %s)\n", m.path, cp.State)
	}

	return nil
}

// Clear removes the checkpoint file if present
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
