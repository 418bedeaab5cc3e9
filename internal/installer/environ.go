package installer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"

	"pyiron-setup/internal/logger"
	"pyiron-setup/internal/paths"
)

// WriteEnvironVar registers marker=configFile in the shell startup file rcFile.
//
// A child process cannot export variables into the shell that started it, so
// the registration only becomes visible after the user re-sources rcFile:
//   - marker absent from rcFile: the export block is appended and the user is
//     told to source the file.
//   - marker present and set to configFile in this process: already active,
//     nothing to do.
//   - marker present and set to another file: ErrMarkerMismatch.
//   - marker present but not set in this process: ErrNotSourced.
func (in *Installer) WriteEnvironVar(configFile, rcFile, marker string) error {
	configFile, err := paths.Normalize(configFile)
	if err != nil {
		return err
	}
	rcFile, err = paths.Normalize(rcFile)
	if err != nil {
		return err
	}

	// Read the current startup file; a missing one is treated as empty and created below
	content, err := afero.ReadFile(in.Fs, rcFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read shell startup file %s: %w", rcFile, err)
	}

	// Any mention of the marker counts as an existing registration
	if bytes.Contains(content, []byte(marker)) {
		if value, ok := in.lookupEnv(marker); ok && value != "" {
			// The live shell resolves the config through this value, so it has to
			// match the file this run writes.
			active, err := paths.Normalize(value)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", marker, value, err)
			}
			if active != configFile {
				return fmt.Errorf("%w: %s is set to %s but this installation uses %s, update %s and source it",
					ErrMarkerMismatch, marker, active, configFile, rcFile)
			}
			logger.Debug("[DEBUG] %s is registered in %s and active (%s)\n", marker, rcFile, value)
			return nil
		}
		// Registered but this process does not see it: the user has to re-source first
		return fmt.Errorf("%w: %s defines %s, please execute the following in your shell: source %s",
			ErrNotSourced, rcFile, marker, rcFile)
	}

	// Build the export block, starting on a fresh line if the file lacks a trailing newline
	var block strings.Builder
	if len(content) > 0 && content[len(content)-1] != '\n' {
		block.WriteString("\n")
	}
	fmt.Fprintf(&block, "# %s for config file location\n", marker)
	fmt.Fprintf(&block, "export %s=%s\n", marker, configFile)

	// Open in append mode so existing content is never rewritten
	file, err := in.Fs.OpenFile(rcFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %s for appending: %w", rcFile, err)
	}
	if _, err := file.WriteString(block.String()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s to %s: %w", marker, rcFile, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", rcFile, err)
	}

	// The new variable only exists in shells started after this point
	logger.Info("[INFO] Added %s to %s\n", marker, rcFile)
	logger.Warn("Please source %s after the initial configuration or reset your terminal.\n\n$ source %s\n\n", rcFile, rcFile)
	return nil
}
