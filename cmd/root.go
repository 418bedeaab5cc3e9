package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pyiron-setup/internal/config"
	"pyiron-setup/internal/installer"
	"pyiron-setup/internal/logger"
)

// usageAnnotation holds the one-line usage string printed for -h and for flag errors.
const usageAnnotation = "usage"

// usageError marks errors whose usage line has already been printed.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// flagValues holds the raw command-line values shared by all commands.
type flagValues struct {
	configFile   string
	resourcePath string
	projectPath  string
	url          string
	shell        string
	defaultsFile string
	debug        bool
	quiet        bool
	json         bool
}

// newRootCmd builds the `pyiron-setup` command tree around the given installer.
// The root command itself performs the installation.
func newRootCmd(in *installer.Installer) *cobra.Command {
	f := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "pyiron-setup",
		Short: "Configure a local pyiron installation",
		Annotations: map[string]string{
			usageAnnotation: "pyiron-setup -c <config_file> -p <project_path> -r <resource_dir> -u <url>",
		},
		Args:          rejectArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs before any command, but not for -h.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(f.debug)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			if !f.quiet && isatty.IsTerminal(os.Stderr.Fd()) {
				in.Progress = os.Stderr
			}
			return in.Install(cmd.Context(), opts)
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(printUsage)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		printUsageTo(cmd, cmd.ErrOrStderr())
		return &usageError{err}
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", config.DefaultConfigFile, "Path to the pyiron configuration file")
	pf.StringVarP(&f.resourcePath, "resource_path", "r", config.DefaultResourcePath, "Resource directory")
	pf.StringVarP(&f.projectPath, "project_path", "p", config.DefaultProjectPath, "Project directory")
	pf.StringVar(&f.shell, "shell", "", "Shell whose startup file gets the environment variable (bash or zsh, default from $SHELL)")
	pf.StringVar(&f.defaultsFile, "defaults", "", "YAML file overriding the built-in defaults")
	pf.BoolVar(&f.debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&f.url, "url", "u", config.DefaultURL, "URL of the resources archive")
	rootCmd.Flags().BoolVar(&f.quiet, "quiet", false, "Do not show a download progress bar")

	rootCmd.AddCommand(newStatusCmd(in, f))
	return rootCmd
}

// resolveOptions layers flags over the defaults file over the built-in defaults.
func resolveOptions(cmd *cobra.Command, f *flagValues) (config.Options, error) {
	opts := config.Default()
	if f.defaultsFile != "" {
		var err error
		if opts, err = config.LoadDefaults(f.defaultsFile); err != nil {
			return opts, err
		}
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst = value
		}
	}
	override("config", &opts.ConfigFile, f.configFile)
	override("resource_path", &opts.ResourcePath, f.resourcePath)
	override("project_path", &opts.ProjectPath, f.projectPath)
	override("url", &opts.URL, f.url)
	override("shell", &opts.Shell, f.shell)
	return opts, nil
}

// rejectArgs treats positional arguments like malformed options.
func rejectArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	printUsageTo(cmd, cmd.ErrOrStderr())
	return &usageError{fmt.Errorf("unexpected argument %q", args[0])}
}

func printUsage(cmd *cobra.Command, _ []string) {
	printUsageTo(cmd, cmd.OutOrStdout())
}

func printUsageTo(cmd *cobra.Command, w io.Writer) {
	usage, ok := cmd.Annotations[usageAnnotation]
	if !ok {
		usage = cmd.UseLine()
	}
	fmt.Fprintln(w, usage)
}

// Execute runs the CLI and exits non-zero on any error.
func Execute() {
	rootCmd := newRootCmd(installer.New())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var uerr *usageError
		if !errors.As(err, &uerr) {
			logger.Error("[ERROR] %v\n", err)
		}
		os.Exit(1)
	}
}
