// Package config loads the optional persisted local preferences file,
// generalizing the teacher's per-user .env anonymous-id file into a small
// YAML document of detect/occurrence flag defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults holds persisted flag defaults read from ~/.apimisuse/config.yaml.
// Every field is a pointer so an absent key in the file leaves the CLI's
// own flag default untouched.
type Defaults struct {
	Threshold      *float64 `yaml:"threshold"`
	Rho            *int     `yaml:"rho"`
	RemoveDup      *bool    `yaml:"rm_dup"`
	DisableMetrics *bool    `yaml:"disable_metrics"`
}

// Path returns the default config file location, ~/.apimisuse/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".apimisuse", "config.yaml"), nil
}

// Load reads and parses the config file at path. A missing file is not an
// error: it returns a zero Defaults, matching the teacher's tolerant
// .env-loading behavior (analytics.LoadEnvFile silently no-ops on a missing
// file).
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return d, nil
}
