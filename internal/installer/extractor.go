package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/spf13/afero"
	"github.com/xi2/xz" // For reading .xz compressed data

	"pyiron-setup/internal/logger"
)

// archiveSuffixes lists the supported archive extensions, longest first.
var archiveSuffixes = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".tar", ".zip", ".7z"}

// archiveSuffix returns the supported archive extension of name, or "".
func archiveSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range archiveSuffixes {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// ExtractArchive extracts the archive at src into dest, choosing the format
// from src's extension. It returns the sorted top-level entry names.
func ExtractArchive(fsys afero.Fs, src, dest string) ([]string, error) {
	switch archiveSuffix(src) {
	case ".zip":
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(fsys, src, dest)
	case ".7z":
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(fsys, src, dest)
	case ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz":
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(fsys, src, dest)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, src)
	}
}

// topLevel collects the first path component of every archive entry.
type topLevel map[string]struct{}

func (t topLevel) add(name string) {
	name = strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "./")
	first := strings.Split(name, "/")[0]
	if first != "" && first != "." && first != ".." {
		t[first] = struct{}{}
	}
}

func (t topLevel) names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// safeJoin joins an archive entry name onto dest, rejecting entries that
// would land outside dest (zip slip).
func safeJoin(dest, name string) (string, error) {
	root := filepath.Clean(dest)
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}

// writeEntry writes one regular archive entry to target, creating parents.
func writeEntry(fsys afero.Fs, target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}
	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := fsys.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(fsys afero.Fs, src, dest string) ([]string, error) {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := fsys.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch archiveSuffix(src) {
	case ".tar.gz", ".tgz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case ".tar.bz2":
		reader = bzip2.NewReader(f)
	case ".tar.xz":
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	tops := topLevel{}

	// Iterate over each file in the archive
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break // End of archive
		}
		if err != nil {
			return nil, err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return nil, err
		}
		tops.add(hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := writeEntry(fsys, target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return nil, err
			}
		default:
			logger.Debug("[DEBUG] skipping tar entry %s of type %c\n", hdr.Name, hdr.Typeflag)
		}
	}
	return tops.names(), nil
}

// extractZip extracts a .zip archive
func extractZip(fsys afero.Fs, src, dest string) ([]string, error) {
	f, err := fsys.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read zip %s: %w", src, err)
	}

	tops := topLevel{}
	for _, zf := range r.File {
		target, err := safeJoin(dest, zf.Name)
		if err != nil {
			return nil, err
		}
		tops.add(zf.Name)

		if zf.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		err = writeEntry(fsys, target, rc, zf.Mode().Perm())
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", zf.Name, err)
		}
	}
	return tops.names(), nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(fsys afero.Fs, src, dest string) ([]string, error) {
	f, err := fsys.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := sevenzip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}

	tops := topLevel{}
	for _, sf := range r.File {
		target, err := safeJoin(dest, sf.Name)
		if err != nil {
			return nil, err
		}
		tops.add(sf.Name)

		if sf.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return nil, err
		}
		err = writeEntry(fsys, target, rc, sf.Mode().Perm())
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", sf.Name, err)
		}
	}
	return tops.names(), nil
}
