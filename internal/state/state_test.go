package state

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyiron-setup/internal/config"
)

func testOptions() config.Options {
	opts := config.Default()
	opts.ConfigFile = "/home/user/.pyiron"
	opts.ProjectPath = "/home/user/pyiron/projects"
	opts.ResourcePath = "/home/user/pyiron/resources"
	opts.RCFile = "/home/user/.bashrc"
	return opts
}

func envWith(key, value string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		if k == key {
			return value, true
		}
		return "", false
	}
}

// installed lays out a complete installation on fsys.
func installed(t *testing.T, fsys afero.Fs, resourcePaths string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll("/home/user/pyiron/projects", 0755))
	require.NoError(t, fsys.MkdirAll("/home/user/pyiron/resources", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/home/user/.pyiron",
		[]byte("[DEFAULT]\nPROJECT_PATHS = /home/user/pyiron/projects\nRESOURCE_PATHS = "+resourcePaths+"\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/home/user/.bashrc",
		[]byte("# PYIRONCONFIG for config file location\nexport PYIRONCONFIG=/home/user/.pyiron\n"), 0644))
}

func TestInspectHealthy(t *testing.T) {
	fsys := afero.NewMemMapFs()
	installed(t, fsys, "/home/user/pyiron/resources")

	r, err := Inspect(fsys, testOptions(), envWith("PYIRONCONFIG", "/home/user/.pyiron"))
	require.NoError(t, err)

	assert.True(t, r.ConfigExists)
	assert.Equal(t, "/home/user/pyiron/projects", r.ProjectPaths)
	assert.Equal(t, "/home/user/pyiron/resources", r.ResourcePaths)
	assert.True(t, r.ProjectDirExists)
	assert.True(t, r.ResourceDirExists)
	assert.True(t, r.MarkerRegistered)
	assert.True(t, r.MarkerActive)
	assert.Empty(t, r.Warnings)
	assert.True(t, r.Healthy())
}

func TestInspectNothingInstalled(t *testing.T) {
	r, err := Inspect(afero.NewMemMapFs(), testOptions(), envWith("OTHER", "x"))
	require.NoError(t, err)

	assert.False(t, r.ConfigExists)
	assert.False(t, r.ProjectDirExists)
	assert.False(t, r.ResourceDirExists)
	assert.False(t, r.MarkerRegistered)
	assert.False(t, r.MarkerActive)
	assert.Len(t, r.Warnings, 2)
	assert.False(t, r.Healthy())
}

func TestInspectWarnings(t *testing.T) {
	tests := []struct {
		name          string
		resourcePaths string
		env           func(string) (string, bool)
		want          string
	}{
		{
			name:          "not sourced",
			resourcePaths: "/home/user/pyiron/resources",
			env:           envWith("OTHER", "x"),
			want:          "registered in /home/user/.bashrc but not active",
		},
		{
			name:          "marker points elsewhere",
			resourcePaths: "/home/user/pyiron/resources",
			env:           envWith("PYIRONCONFIG", "/etc/pyiron.cfg"),
			want:          "points to /etc/pyiron.cfg",
		},
		{
			name:          "resource path mismatch",
			resourcePaths: "/srv/pyiron/resources",
			env:           envWith("PYIRONCONFIG", "/home/user/.pyiron"),
			want:          "records resource path /srv/pyiron/resources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			installed(t, fsys, tt.resourcePaths)

			r, err := Inspect(fsys, testOptions(), tt.env)
			require.NoError(t, err)
			require.Len(t, r.Warnings, 1)
			assert.Contains(t, r.Warnings[0], tt.want)
			assert.False(t, r.Healthy())
		})
	}
}

func TestInspectRecordedDirectories(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Options)
		check  func(t *testing.T, r *Report)
		want   string
	}{
		{
			name:   "project path",
			modify: func(o *config.Options) { o.ProjectPath = "/somewhere/projects" },
			check: func(t *testing.T, r *Report) {
				assert.Equal(t, "/home/user/pyiron/projects", r.ProjectDir)
				assert.True(t, r.ProjectDirExists)
			},
			want: "records project path /home/user/pyiron/projects but /somewhere/projects was requested",
		},
		{
			name:   "resource path",
			modify: func(o *config.Options) { o.ResourcePath = "/somewhere/resources" },
			check: func(t *testing.T, r *Report) {
				assert.Equal(t, "/home/user/pyiron/resources", r.ResourceDir)
				assert.True(t, r.ResourceDirExists)
			},
			want: "records resource path /home/user/pyiron/resources but /somewhere/resources was requested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			installed(t, fsys, "/home/user/pyiron/resources")

			opts := testOptions()
			tt.modify(&opts)
			r, err := Inspect(fsys, opts, envWith("PYIRONCONFIG", "/home/user/.pyiron"))
			require.NoError(t, err)

			tt.check(t, r)
			assert.Equal(t, []string{tt.want}, r.Warnings)
			assert.False(t, r.Healthy())
		})
	}
}

func TestReportJSON(t *testing.T) {
	r := &Report{ConfigFile: "/home/user/.pyiron", ConfigExists: true, Warnings: []string{"w"}}
	out, err := r.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "/home/user/.pyiron", decoded["config_file"])
	assert.Equal(t, true, decoded["config_exists"])
	assert.Equal(t, []any{"w"}, decoded["warnings"])
	assert.NotContains(t, decoded, "marker_value")
}
