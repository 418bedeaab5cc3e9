package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pyiron-setup/internal/installer"
	"pyiron-setup/internal/state"
)

// errIncomplete is returned by `status` when the installation is not usable yet.
var errIncomplete = errors.New("pyiron installation is incomplete")

// newStatusCmd reports the state of an existing installation without changing anything.
func newStatusCmd(in *installer.Installer, f *flagValues) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the pyiron installation",
		Annotations: map[string]string{
			usageAnnotation: "pyiron-setup status -c <config_file> -p <project_path> -r <resource_dir> [--json]",
		},
		Args: rejectArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			report, err := state.Inspect(in.Fs, opts, in.LookupEnv)
			if err != nil {
				return err
			}

			if f.json {
				out, err := report.JSON()
				if err != nil {
					return fmt.Errorf("failed to marshal status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if !report.Healthy() {
				return errIncomplete
			}
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&f.json, "json", false, "Print the status as JSON")
	return statusCmd
}

func printReport(w io.Writer, r *state.Report) {
	mark := func(ok bool) string {
		if ok {
			return color.GreenString("ok")
		}
		return color.RedString("missing")
	}

	fmt.Fprintf(w, "config file    %s [%s]\n", r.ConfigFile, mark(r.ConfigExists))
	fmt.Fprintf(w, "project dir    %s [%s]\n", r.ProjectDir, mark(r.ProjectDirExists))
	fmt.Fprintf(w, "resource dir   %s [%s]\n", r.ResourceDir, mark(r.ResourceDirExists))
	fmt.Fprintf(w, "startup file   %s [%s]\n", r.RCFile, mark(r.MarkerRegistered))
	fmt.Fprintf(w, "active marker  %s [%s]\n", r.MarkerValue, mark(r.MarkerActive))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.HiMagentaString("warning:"), warning)
	}
}
