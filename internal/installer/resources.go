package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"pyiron-setup/internal/logger"
	"pyiron-setup/internal/paths"
)

// ResourceSpec describes where the resources archive comes from and where it goes.
type ResourceSpec struct {
	URL         string // Remote archive
	ZipFile     string // Name of the downloaded archive inside TempDir
	ResourceDir string // Target resource directory, may start with ~
	FolderName  string // Top-level folder the archive extracts to
	TempDir     string // Scratch directory; defaults to the system temp dir
}

// DownloadResources downloads the resources archive and unpacks its top-level
// folder into res.ResourceDir. The steps run strictly in order and nothing is
// rolled back: a failure after the download leaves the archive (and possibly
// a partial extraction) in the temp directory.
func (in *Installer) DownloadResources(ctx context.Context, res ResourceSpec) error {
	userDir, err := paths.Normalize(res.ResourceDir)
	if err != nil {
		return err
	}
	if res.FolderName == "" {
		return fmt.Errorf("archive folder name is empty")
	}
	tempDir := res.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	// Scratch locations: the downloaded archive and the folder it extracts to
	tempArchive := filepath.Join(tempDir, archiveName(res.ZipFile, res.URL))
	tempExtractFolder := filepath.Join(tempDir, res.FolderName)

	logger.Info("[INFO] Downloading %s\n", res.URL)
	if err := in.downloadFile(ctx, res.URL, tempArchive); err != nil {
		return err
	}

	// Never touch an existing resource directory, not even partially
	exists, err := afero.Exists(in.Fs, userDir)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w, therefore it can not be created: %s", ErrResourceDirExists, userDir)
	}

	// Unpack next to the archive; only FolderName is moved into place afterwards
	entries, err := ExtractArchive(in.Fs, tempArchive, tempDir)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", tempArchive, err)
	}
	logger.Debug("[DEBUG] Archive top-level entries: %v\n", entries)

	if err := moveDir(in.Fs, tempExtractFolder, userDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("archive folder %s not found (archive contains %v): %w", res.FolderName, entries, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to move %s to %s: %w", tempExtractFolder, userDir, err)
	}

	// Shell scripts shipped in the archive must be runnable by their owner
	if runtime.GOOS != "windows" {
		if err := markScriptsExecutable(in.Fs, userDir); err != nil {
			return fmt.Errorf("failed to mark shell scripts executable: %w", err)
		}
	}

	// Clean up the scratch archive and whatever is left of the extraction
	if err := in.Fs.Remove(tempArchive); err != nil {
		return fmt.Errorf("failed to remove %s: %w", tempArchive, err)
	}
	if err := in.Fs.RemoveAll(tempExtractFolder); err != nil {
		return fmt.Errorf("failed to remove %s: %w", tempExtractFolder, err)
	}

	logger.Info("[INFO] Installed resources to %s\n", userDir)
	return nil
}

// archiveName returns the temp archive name. When the URL path carries a
// different supported archive extension than zipFile, that extension wins so
// the right extractor is picked (resources.zip + .../master.tar.gz ->
// resources.tar.gz).
func archiveName(zipFile, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return zipFile
	}
	urlExt := archiveSuffix(u.Path)
	fileExt := archiveSuffix(zipFile)
	if urlExt == "" || urlExt == fileExt {
		return zipFile
	}
	return zipFile[:len(zipFile)-len(fileExt)] + urlExt
}
