package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefaults reads a YAML defaults file and overlays its values on Default().
// Keys that are absent or empty keep their built-in value.
//
// Example:
//
//	config: ~/.pyiron
//	resource_path: /data/pyiron/resources
//	project_path: /data/pyiron/projects
//	url: https://example.org/resources.zip
//	shell: zsh
func LoadDefaults(path string) (Options, error) {
	opts := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read defaults file: %w", err)
	}

	var file Options
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return opts, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
	}

	opts.Merge(file)
	return opts, nil
}

// Merge copies every non-empty user-settable field of other into o.
func (o *Options) Merge(other Options) {
	if other.ConfigFile != "" {
		o.ConfigFile = other.ConfigFile
	}
	if other.ResourcePath != "" {
		o.ResourcePath = other.ResourcePath
	}
	if other.ProjectPath != "" {
		o.ProjectPath = other.ProjectPath
	}
	if other.URL != "" {
		o.URL = other.URL
	}
	if other.Shell != "" {
		o.Shell = other.Shell
	}
	if other.RCFile != "" {
		o.RCFile = other.RCFile
	}
}
