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
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"

	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/types"
)

// Config represents the fleetschema configuration
type Config struct {
	// Database connection settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Schema script and manifest locations
	Schema SchemaConfig `yaml:"schema" mapstructure:"schema"`

	// Provisioning behaviour
	Provisioning ProvisioningConfig `yaml:"provisioning" mapstructure:"provisioning"`

	// Migration settings for follow-up goose migrations
	Migration MigrationConfig `yaml:"migration" mapstructure:"migration"`

	// Output settings
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// DatabaseConfig contains database-related settings
type DatabaseConfig struct {
	Type           string `yaml:"type" mapstructure:"type"`                       // sqlite, sqlserver, postgresql
	DSN            string `yaml:"dsn" mapstructure:"dsn"`                         // Full connection string, overrides the fields below
	Host           string `yaml:"host" mapstructure:"host"`                       // Server host for client/server engines
	Port           int    `yaml:"port" mapstructure:"port"`                       // Server port, 0 for the engine default
	Name           string `yaml:"name" mapstructure:"name"`                       // Database name
	User           string `yaml:"user" mapstructure:"user"`                       // Login
	Password       string `yaml:"password" mapstructure:"password"`               // Password
	Path           string `yaml:"path" mapstructure:"path"`                       // Database file for the embedded engine
	SSLMode        string `yaml:"sslmode" mapstructure:"sslmode"`                 // PostgreSQL sslmode
	ConnectTimeout int    `yaml:"connect_timeout" mapstructure:"connect_timeout"` // Seconds, 0 for the driver default
}

// SchemaConfig contains the schema inputs
type SchemaConfig struct {
	ScriptFile   string `yaml:"script_file" mapstructure:"script_file"`     // Schema script, empty for the built-in fleet schema
	ManifestFile string `yaml:"manifest_file" mapstructure:"manifest_file"` // Required-object manifest, empty for the built-in list
}

// ProvisioningConfig controls a provisioning run
type ProvisioningConfig struct {
	StrictDuplicateIndexes bool          `yaml:"strict_duplicate_indexes" mapstructure:"strict_duplicate_indexes"` // Fail when an index name is defined twice
	CheckpointFile         string        `yaml:"checkpoint_file" mapstructure:"checkpoint_file"`                   // Progress file used to resume a failed run
	StatementTimeout       time.Duration `yaml:"statement_timeout" mapstructure:"statement_timeout"`               // Per-statement limit, 0 for none
	Resume                 bool          `yaml:"resume" mapstructure:"resume"`                                     // Resume from the checkpoint file when it matches the script
}

// MigrationConfig contains migration-related settings
type MigrationConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"` // Directory for goose migration files
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Verbose      bool `yaml:"verbose" mapstructure:"verbose"`             // Enable verbose output
	ColorEnabled bool `yaml:"color_enabled" mapstructure:"color_enabled"` // Enable colored output
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:    "sqlite",
			Host:    "localhost",
			Path:    "fleet.db",
			SSLMode: "disable",
		},
		Schema: SchemaConfig{},
		Provisioning: ProvisioningConfig{
			StrictDuplicateIndexes: true,
			CheckpointFile:         ".fleetschema_state.yaml",
			StatementTimeout:       0,
			Resume:                 true,
		},
		Migration: MigrationConfig{
			Directory: "migrations",
		},
		Output: OutputConfig{
			Verbose:      false,
			ColorEnabled: true,
		},
	}
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix("FLEETSCHEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fleetschema.config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be corrected by defaults
func (c *Config) Validate() error {
	dialect, err := c.Dialect()
	if err != nil {
		return errors.NewValidationError("database.type", err.Error())
	}
	if c.Database.DSN == "" {
		switch {
		case dialect == types.DialectSQLite && c.Database.Path == "":
			return errors.NewValidationError("database.path", "required for sqlite when dsn is empty")
		case dialect.IsClientServer() && c.Database.Host == "":
			return errors.NewValidationError("database.host", "required when dsn is empty")
		}
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return errors.NewValidationError("database.port", fmt.Sprintf("out of range: %d", c.Database.Port))
	}
	if c.Provisioning.StatementTimeout < 0 {
		return errors.NewValidationError("provisioning.statement_timeout", "must not be negative")
	}
	return nil
}

// Dialect parses database.type
func (c *Config) Dialect() (types.Dialect, error) {
	return types.ParseDialect(c.Database.Type)
}

// ConnectionString returns database.dsn, or builds one from the individual fields
func (c *Config) ConnectionString() (string, error) {
	if c.Database.DSN != "" {
		return c.Database.DSN, nil
	}

	dialect, err := c.Dialect()
	if err != nil {
		return "", err
	}

	db := c.Database
	switch dialect {
	case types.DialectSQLite:
		return db.Path, nil

	case types.DialectSQLServer:
		u := &url.URL{Scheme: "sqlserver", Host: hostPort(db.Host, db.Port)}
		u.User = userInfo(db.User, db.Password)
		q := url.Values{}
		if db.Name != "" {
			q.Set("database", db.Name)
		}
		if db.ConnectTimeout > 0 {
			q.Set("connection timeout", strconv.Itoa(db.ConnectTimeout))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil

	case types.DialectPostgreSQL:
		u := &url.URL{Scheme: "postgres", Host: hostPort(db.Host, db.Port), Path: "/" + db.Name}
		u.User = userInfo(db.User, db.Password)
		q := url.Values{}
		if db.SSLMode != "" {
			q.Set("sslmode", db.SSLMode)
		}
		if db.ConnectTimeout > 0 {
			q.Set("connect_timeout", strconv.Itoa(db.ConnectTimeout))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	return "", fmt.Errorf("unsupported database type: %s", dialect)
}

func userInfo(user, password string) *url.Userinfo {
	switch {
	case user == "":
		return nil
	case password == "":
		return url.User(user)
	default:
		return url.UserPassword(user, password)
	}
}

func hostPort(host string, port int) string {
	if port == 0 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# Fleetschema Configuration File
#
# Settings can be overridden using environment variables with the prefix FLEETSCHEMA_
# For example: FLEETSCHEMA_DATABASE_TYPE=sqlserver
#
# For nested values, use underscores: FLEETSCHEMA_PROVISIONING_STATEMENT_TIMEOUT=30s
#
# database.type: sqlite, sqlserver or postgresql
# schema.script_file / schema.manifest_file: leave empty to use the built-in fleet schema
#

`

	fullContent := []byte(header + string(data))
	if err := os.WriteFile(path, fullContent, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper, cfg *Config) {
	// Database defaults
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.sslmode", cfg.Database.SSLMode)
	v.SetDefault("database.connect_timeout", cfg.Database.ConnectTimeout)

	// Schema defaults
	v.SetDefault("schema.script_file", cfg.Schema.ScriptFile)
	v.SetDefault("schema.manifest_file", cfg.Schema.ManifestFile)

	// Provisioning defaults
	v.SetDefault("provisioning.strict_duplicate_indexes", cfg.Provisioning.StrictDuplicateIndexes)
	v.SetDefault("provisioning.checkpoint_file", cfg.Provisioning.CheckpointFile)
	v.SetDefault("provisioning.statement_timeout", cfg.Provisioning.StatementTimeout)
	v.SetDefault("provisioning.resume", cfg.Provisioning.Resume)

	// Migration defaults
	v.SetDefault("migration.directory", cfg.Migration.Directory)

	// Output defaults
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.color_enabled", cfg.Output.ColorEnabled)
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	return "fleetschema.config.yaml"
}

// ConfigExists checks if a config file exists
func ConfigExists() bool {
	_, err := os.Stat(GetConfigPath())
	return err == nil
}
