package state

import (
	"bytes"
	"encoding/json" // For JSON encoding of the status report
	"fmt"

	"github.com/spf13/afero"

	"pyiron-setup/internal/config"
	"pyiron-setup/internal/installer"
	"pyiron-setup/internal/paths"
)

// Report describes the observable state of a pyiron installation.
// ProjectPaths and ResourcePaths are the values recorded in the config file;
// ProjectDir and ResourceDir are the directories that were checked.
type Report struct {
	ConfigFile        string   `json:"config_file"`
	ConfigExists      bool     `json:"config_exists"`
	ProjectPaths      string   `json:"project_paths,omitempty"`
	ResourcePaths     string   `json:"resource_paths,omitempty"`
	ProjectDir        string   `json:"project_dir"`
	ProjectDirExists  bool     `json:"project_dir_exists"`
	ResourceDir       string   `json:"resource_dir"`
	ResourceDirExists bool     `json:"resource_dir_exists"`
	RCFile            string   `json:"rc_file"`
	MarkerRegistered  bool     `json:"marker_registered"`
	MarkerActive      bool     `json:"marker_active"`
	MarkerValue       string   `json:"marker_value,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Inspect gathers a Report for the installation described by opts.
// Directories recorded in an existing config file take precedence over opts;
// a recorded directory that differs from the requested one adds a warning.
func Inspect(fsys afero.Fs, opts config.Options, lookupEnv func(string) (string, bool)) (*Report, error) {
	configFile, err := paths.Normalize(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	projectDir, err := paths.Normalize(opts.ProjectPath)
	if err != nil {
		return nil, err
	}
	resourceDir, err := paths.Normalize(opts.ResourcePath)
	if err != nil {
		return nil, err
	}
	rcFile, err := paths.Normalize(installer.ShellRCFile(opts.Shell, opts.RCFile))
	if err != nil {
		return nil, err
	}

	r := &Report{ConfigFile: configFile, ProjectDir: projectDir, ResourceDir: resourceDir, RCFile: rcFile}

	if r.ConfigExists, err = afero.Exists(fsys, configFile); err != nil {
		return nil, err
	}
	if r.ConfigExists {
		cf, err := installer.ReadConfigFile(fsys, configFile)
		if err != nil {
			return nil, err
		}
		r.ProjectPaths = cf.ProjectPaths
		r.ResourcePaths = cf.ResourcePaths
		// pyiron resolves both directories through the config file, so the
		// recorded values are the ones checked below.
		r.ProjectDir = r.recorded("project", cf.ProjectPaths, projectDir)
		r.ResourceDir = r.recorded("resource", cf.ResourcePaths, resourceDir)
	} else {
		r.Warnings = append(r.Warnings, "config file does not exist")
	}

	if r.ProjectDirExists, err = afero.DirExists(fsys, r.ProjectDir); err != nil {
		return nil, err
	}
	if r.ResourceDirExists, err = afero.DirExists(fsys, r.ResourceDir); err != nil {
		return nil, err
	}

	if rc, err := afero.ReadFile(fsys, rcFile); err == nil {
		r.MarkerRegistered = bytes.Contains(rc, []byte(opts.Marker))
	}
	r.MarkerValue, r.MarkerActive = lookupEnv(opts.Marker)
	r.MarkerActive = r.MarkerActive && r.MarkerValue != ""

	switch {
	case r.MarkerRegistered && !r.MarkerActive:
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s is registered in %s but not active, run: source %s", opts.Marker, rcFile, rcFile))
	case !r.MarkerRegistered && !r.MarkerActive:
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s is not registered in %s", opts.Marker, rcFile))
	}
	if r.MarkerActive && r.MarkerValue != configFile {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s points to %s instead of %s", opts.Marker, r.MarkerValue, configFile))
	}

	return r, nil
}

// recorded returns the directory the config file records for kind, falling back
// to requested when the key is empty. A differing record is reported as a warning.
func (r *Report) recorded(kind, record, requested string) string {
	if record == "" {
		return requested
	}
	if record != requested {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"config file records %s path %s but %s was requested", kind, record, requested))
	}
	return record
}

// Healthy reports whether the installation looks complete and consistent.
func (r *Report) Healthy() bool {
	return r.ConfigExists && r.ProjectDirExists && r.ResourceDirExists && r.MarkerActive && len(r.Warnings) == 0
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
