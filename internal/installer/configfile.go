package installer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"pyiron-setup/internal/logger"
	"pyiron-setup/internal/paths"
)

// Keys of the config file's default section.
const (
	ProjectPathsKey  = "PROJECT_PATHS"
	ResourcePathsKey = "RESOURCE_PATHS"
)

// ConfigFile holds the values recorded in a pyiron config file.
type ConfigFile struct {
	ProjectPaths  string
	ResourcePaths string
}

// WriteConfigFile creates the project directory and, unless configFile already
// exists, writes the config file declaring the project and resource paths.
// An existing config file is never merged, validated or overwritten.
func (in *Installer) WriteConfigFile(configFile, projectPath, resourcePath string) error {
	configFile, err := paths.Normalize(configFile)
	if err != nil {
		return err
	}
	projectPath, err = paths.Normalize(projectPath)
	if err != nil {
		return err
	}
	resourcePath, err = paths.Normalize(resourcePath)
	if err != nil {
		return err
	}

	if err := in.Fs.MkdirAll(projectPath, 0755); err != nil {
		return fmt.Errorf("failed to create project directory %s: %w", projectPath, err)
	}
	logger.Debug("[DEBUG] Project directory ready: %s\n", projectPath)

	info, err := in.Fs.Stat(configFile)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("config file %s is a directory", configFile)
	case err == nil:
		logger.Info("[INFO] Config file %s exists already, leaving it untouched\n", configFile)
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		// Anything but "missing" (e.g. permission denied on the parent) is fatal.
		return fmt.Errorf("failed to check config file %s: %w", configFile, err)
	}

	if err := afero.WriteFile(in.Fs, configFile, []byte(formatConfig(projectPath, resourcePath)), 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFile, err)
	}
	logger.Info("[INFO] Wrote config file %s\n", configFile)
	return nil
}

// formatConfig renders the config file body. ini.v1 never emits the
// [DEFAULT] header on write, so the three lines are composed directly.
func formatConfig(projectPath, resourcePath string) string {
	return "[DEFAULT]\n" +
		ProjectPathsKey + " = " + projectPath + "\n" +
		ResourcePathsKey + " = " + resourcePath + "\n"
}

// ReadConfigFile parses the default section of an existing config file.
func ReadConfigFile(fsys afero.Fs, configFile string) (ConfigFile, error) {
	raw, err := afero.ReadFile(fsys, configFile)
	if err != nil {
		return ConfigFile{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ini.Load(raw)
	if err != nil {
		return ConfigFile{}, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}
	sec := cfg.Section(ini.DefaultSection)
	return ConfigFile{
		ProjectPaths:  sec.Key(ProjectPathsKey).String(),
		ResourcePaths: sec.Key(ResourcePathsKey).String(),
	}, nil
}
