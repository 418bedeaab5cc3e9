// Package paths normalizes user supplied filesystem paths.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other forms ("~user/...") are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home := xdg.Home
	if home == "" {
		return "", fmt.Errorf("cannot expand %q: home directory is unknown", path)
	}
	return filepath.Join(home, path[1:]), nil
}

// Normalize expands the home shorthand and returns the absolute, cleaned path.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}
