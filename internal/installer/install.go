package installer

import (
	"context"

	"pyiron-setup/internal/config"
	"pyiron-setup/internal/logger"
)

// Install configures a pyiron installation: it writes the config file,
// registers it in the shell startup file, then downloads the resources.
// The first failing step ends the run.
func (in *Installer) Install(ctx context.Context, opts config.Options) error {
	logger.Debug("[DEBUG] Install options: %+v\n", opts)

	if err := in.WriteConfigFile(opts.ConfigFile, opts.ProjectPath, opts.ResourcePath); err != nil {
		return err
	}

	rcFile := ShellRCFile(opts.Shell, opts.RCFile)
	if err := in.WriteEnvironVar(opts.ConfigFile, rcFile, opts.Marker); err != nil {
		return err
	}

	return in.DownloadResources(ctx, ResourceSpec{
		URL:         opts.URL,
		ZipFile:     opts.ZipFile,
		ResourceDir: opts.ResourcePath,
		FolderName:  opts.FolderName,
		TempDir:     opts.TempDir,
	})
}
