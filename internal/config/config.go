package config

import (
	"os"
	"path/filepath"

	"github.com/andy/billbook/internal/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Ledger entry settings
	Ledger LedgerConfig `yaml:"ledger"`

	// Report settings
	Report ReportConfig `yaml:"report"`

	// Logging settings
	Log logger.Config `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type LedgerConfig struct {
	Companies []string `yaml:"companies"` // Company rows in a new record
}

type ReportConfig struct {
	OutputDir        string `yaml:"output_dir"`        // Directory for exported workbooks
	PageHeight       int    `yaml:"page_height"`       // Page content height in rows
	CombineCustomers bool   `yaml:"combine_customers"` // Pack customers onto shared pages
}

// DefaultConfigPath returns ~/.config/billbook/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "billbook", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "billbook", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "billbook", "billbook.db"),
		},
		Ledger: LedgerConfig{
			Companies: []string{"ML", "NB", "Book"},
		},
		Report: ReportConfig{
			OutputDir:        filepath.Join(homeDir, ".config", "billbook", "reports"),
			PageHeight:       40,
			CombineCustomers: true,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (database, reports)
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(c.Report.OutputDir, 0755)
}
