package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - HG_CONFIG_PATH: config file location (default: ~/.config/hg.toml)
//   - HG_HOME: base directory for hg data (default: ~/.local/share/hg)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("HG_CONFIG_PATH", ".config", "hg.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome("HG_HOME", ".local", "share", "hg")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns $env if set, otherwise the path under the home directory.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
