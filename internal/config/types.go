package config

import "os"

// Built-in defaults for a pyiron installation.
const (
	DefaultConfigFile   = "~/.pyiron"
	DefaultProjectPath  = "~/pyiron/projects"
	DefaultResourcePath = "~/pyiron/resources"
	DefaultURL          = "https://github.com/pyiron/pyiron-resources/archive/master.zip"

	// DefaultZipFile is the name the downloaded archive gets inside the temp directory.
	DefaultZipFile = "resources.zip"
	// DefaultFolderName is the top-level folder the resources archive extracts to.
	DefaultFolderName = "pyiron-resources-master"
	// DefaultMarker is the environment variable pointing at the config file.
	DefaultMarker = "PYIRONCONFIG"
)

// Options is the full parameter set of one installation run.
// Every operation receives the values it needs from here instead of
// reading package-level constants, so tests can point them anywhere.
type Options struct {
	ConfigFile   string `yaml:"config"`        // Config file location, may start with ~
	ResourcePath string `yaml:"resource_path"` // Target resource directory
	ProjectPath  string `yaml:"project_path"`  // Project directory
	URL          string `yaml:"url"`           // Resources archive URL
	Shell        string `yaml:"shell"`         // bash or zsh; empty means detect from $SHELL
	RCFile       string `yaml:"rc_file"`       // Explicit shell startup file, overrides Shell

	// Fixed internals, deliberately not settable from flags or the defaults file.
	ZipFile    string `yaml:"-"`
	FolderName string `yaml:"-"`
	Marker     string `yaml:"-"`
	TempDir    string `yaml:"-"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		ConfigFile:   DefaultConfigFile,
		ResourcePath: DefaultResourcePath,
		ProjectPath:  DefaultProjectPath,
		URL:          DefaultURL,
		ZipFile:      DefaultZipFile,
		FolderName:   DefaultFolderName,
		Marker:       DefaultMarker,
		TempDir:      os.TempDir(),
	}
}
