// Package installer implements the three installation steps of pyiron-setup:
// writing the config file, registering the config location in the shell
// startup file, and fetching the resources archive into the resource directory.
//
// The steps are synchronous and strictly ordered. Nothing is retried and
// nothing is rolled back: every error is returned to the caller as is.
package installer

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/spf13/afero"
)

var (
	// ErrResourceDirExists is returned when the target resource directory is already present.
	ErrResourceDirExists = errors.New("the resource directory exists already")
	// ErrNotSourced is returned when the shell startup file already registers the
	// marker variable but the running process does not see it yet.
	ErrNotSourced = errors.New("shell startup file has the environment variable but has not been sourced")
	// ErrMarkerMismatch is returned when the marker variable is active but points
	// at a different config file than the one being installed.
	ErrMarkerMismatch = errors.New("environment variable points to a different config file")
	// ErrUnsupportedArchive is returned for archive names with an unknown extension.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
)

// Installer carries the side-effect boundaries of an installation run.
type Installer struct {
	// Fs is the filesystem all reads and writes go through.
	Fs afero.Fs
	// Client performs the archive download.
	Client *http.Client
	// LookupEnv reads the environment of the running process.
	LookupEnv func(key string) (string, bool)
	// Progress receives the download progress bar; nil disables it.
	Progress io.Writer
}

// New returns an Installer bound to the real filesystem, the default HTTP
// client (no timeout, no retries) and the process environment.
func New() *Installer {
	return &Installer{
		Fs:        afero.NewOsFs(),
		Client:    http.DefaultClient,
		LookupEnv: os.LookupEnv,
	}
}

func (in *Installer) client() *http.Client {
	if in.Client == nil {
		return http.DefaultClient
	}
	return in.Client
}

func (in *Installer) lookupEnv(key string) (string, bool) {
	if in.LookupEnv == nil {
		return os.LookupEnv(key)
	}
	return in.LookupEnv(key)
}
