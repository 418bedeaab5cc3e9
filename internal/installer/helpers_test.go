package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// archiveEntry is one file or directory (name ending in "/") of a test archive.
type archiveEntry struct {
	name string
	body string
	mode fs.FileMode
}

func (e archiveEntry) isDir() bool { return strings.HasSuffix(e.name, "/") }

func (e archiveEntry) perm() fs.FileMode {
	if e.mode != 0 {
		return e.mode
	}
	if e.isDir() {
		return 0755
	}
	return 0644
}

func buildZip(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if e.isDir() {
			hdr.Method = zip.Store
			hdr.SetMode(fs.ModeDir | e.perm())
		} else {
			hdr.SetMode(e.perm())
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if !e.isDir() {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildTarGz(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: int64(e.perm())}
		if e.isDir() {
			hdr.Typeflag = tar.TypeDir
		} else {
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.isDir() {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// resourcesArchive is a minimal pyiron-resources style archive.
func resourcesArchive(t *testing.T, folder string) []byte {
	return buildZip(t,
		archiveEntry{name: folder + "/"},
		archiveEntry{name: folder + "/setup.sh", body: "#!/bin/sh\necho setup\n"},
		archiveEntry{name: folder + "/potentials/"},
		archiveEntry{name: folder + "/potentials/README.md", body: "potentials\n"},
	)
}

// archiveServer serves data at every path and counts the requests it gets.
type archiveServer struct {
	*httptest.Server
	hits atomic.Int32
}

func serveArchive(t *testing.T, data []byte) *archiveServer {
	t.Helper()
	s := &archiveServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func noEnv(string) (string, bool) { return "", false }

// newTestInstaller returns an Installer on the real filesystem that talks to srv.
func newTestInstaller(srv *archiveServer) *Installer {
	in := &Installer{Fs: afero.NewOsFs(), LookupEnv: noEnv}
	if srv != nil {
		in.Client = srv.Client()
	}
	return in
}

// newMemInstaller returns an Installer on an in-memory filesystem.
func newMemInstaller() *Installer {
	return &Installer{Fs: afero.NewMemMapFs(), LookupEnv: noEnv}
}
