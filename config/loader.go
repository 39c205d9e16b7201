package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ProjectConfigFile is the name of the project-level config file
const ProjectConfigFile = "nlggen.yaml"

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	// startDir is where the project config search begins (empty = cwd)
	startDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. The explicit file, or else nlggen.yaml in the current or a parent directory
//
// Command-line flags are merged on top by the caller, which then validates.
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()

	if explicit != "" {
		fileConfig, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
		config.Merge(fileConfig)
		return config, nil
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath == "" {
		l.logger.Debug("No project config found")
		return config, nil
	}
	fileConfig, err := LoadFromFile(projectConfigPath)
	if err != nil {
		l.logger.Warn("Failed to load project config",
			slog.String("path", projectConfigPath),
			slog.String("error", err.Error()))
		return config, nil
	}
	l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
	config.Merge(fileConfig)
	return config, nil
}

// findProjectConfig searches for nlggen.yaml in the start directory and its parents
func (l *Loader) findProjectConfig() string {
	dir := l.startDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
