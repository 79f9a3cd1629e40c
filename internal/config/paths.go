package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "BUDGET_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "budget.yaml"
	// ConfigDirName is the per-user and system config directory
	ConfigDirName = "budget"

	userConfigFile = "config.yaml"
)

// userConfigDirs lists the per-user config directories, XDG first
func userConfigDirs(getenv func(string) string) []string {
	var dirs []string
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, ConfigDirName))
	}
	if home := getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	return dirs
}

// candidatePaths is the lookup order documented on the package
func candidatePaths(getenv func(string) string) []string {
	var paths []string
	if explicit := getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, ConfigFileName)
	for _, dir := range userConfigDirs(getenv) {
		paths = append(paths, filepath.Join(dir, userConfigFile))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, userConfigFile))
}

// FindConfigPath returns the first existing candidate as an absolute path,
// or "" when there is none. A missing $BUDGET_CONFIG falls through to the
// remaining locations.
func FindConfigPath() string {
	for _, path := range candidatePaths(os.Getenv) {
		if !isFile(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// DefaultConfigPath is where WriteDefaultConfig puts a new file: the first
// per-user directory, or the working directory when neither is known
func DefaultConfigPath() string {
	if dirs := userConfigDirs(os.Getenv); len(dirs) > 0 {
		return filepath.Join(dirs[0], userConfigFile)
	}
	return ConfigFileName
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
