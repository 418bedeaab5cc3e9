package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"

	"pyiron-setup/internal/logger"
)

// downloadFile downloads the content located at the specified URL and saves it to destPath.
// A single GET, no retries; non-2xx responses are errors.
func (in *Installer) downloadFile(ctx context.Context, url, destPath string) error {
	// Build a cancellable GET request for the archive
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	// Send it through the injected client (tests point it at a local server)
	resp, err := in.client().Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %s\n", cerr)
		}
	}()

	// Treat anything outside 2xx as a failed download
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	// Create or truncate the file at destPath to write the downloaded content
	out, err := in.Fs.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close destination file: %s\n", cerr)
		}
	}()

	// Mirror the body into a progress bar when one was requested
	var dst io.Writer = out
	if in.Progress != nil {
		bar := progressbar.NewOptions64(
			resp.ContentLength, // -1 when the server does not say
			progressbar.OptionSetWriter(in.Progress),
			progressbar.OptionSetDescription("downloading resources"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		dst = io.MultiWriter(out, bar)
	}

	// Copy the entire response body into the destination file
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write response to file: %w", err)
	}

	logger.Debug("[DEBUG] Downloaded %d bytes from %s to %s\n", n, url, destPath)
	return nil
}

// detectShell tries to figure out which shell the current user is using by reading the
// SHELL environment variable. Supports zsh and bash, falling back to bash.
func detectShell() string {
	shell := os.Getenv("SHELL")
	logger.Debug("[DEBUG] Detected shell environment: %s\n", shell)

	// Only zsh is told apart; everything else is handled like bash
	if strings.Contains(shell, "zsh") {
		return "zsh"
	}
	return "bash"
}

// ShellRCFile returns the startup file to register the marker in.
// An explicit rcFile wins; otherwise it follows shell, or $SHELL when shell is empty.
func ShellRCFile(shell, rcFile string) string {
	if rcFile != "" {
		return rcFile
	}
	if shell == "" {
		shell = detectShell()
	}

	// Map supported shells to their startup files
	shellrcMap := map[string]string{
		"zsh":  "~/.zshrc",
		"bash": "~/.bashrc",
	}
	rc, ok := shellrcMap[shell]
	if !ok {
		logger.Warn("[WARN] Unknown shell '%s', defaulting to '~/.bashrc'\n", shell)
		rc = "~/.bashrc"
	}
	return rc
}

// moveDir relocates src to dst, creating dst's parents. A plain rename is
// tried first; when src and dst sit on different devices it falls back to a
// recursive copy followed by removal of src.
func moveDir(fsys afero.Fs, src, dst string) error {
	if _, err := fsys.Stat(src); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	// Try a plain rename first
	err := fsys.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	// Temp dir on another device: copy the tree, then drop the source
	logger.Debug("[DEBUG] %s and %s are on different devices, copying\n", src, dst)
	if err := copyDir(fsys, src, dst); err != nil {
		return err
	}
	return fsys.RemoveAll(src)
}

// copyDir recursively copies the directory tree at src to dst, preserving permissions.
func copyDir(fsys afero.Fs, src, dst string) error {
	return afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Recreate the same relative layout below dst
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(fsys, path, target, info.Mode().Perm())
	})
}

// copyFile copies a file from src to dst with the given permissions.
func copyFile(fsys afero.Fs, src, dst string, perm os.FileMode) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	return nil
}

// markScriptsExecutable grants owner execute permission to every file below
// root whose name contains ".sh".
func markScriptsExecutable(fsys afero.Fs, root string) error {
	return afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Directories and non-script files keep their mode
		if info.IsDir() || !strings.Contains(info.Name(), ".sh") {
			return nil
		}
		logger.Debug("[DEBUG] chmod u+x %s\n", path)
		return fsys.Chmod(path, info.Mode().Perm()|0100)
	})
}
