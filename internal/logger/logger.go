package logger

import (
	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Colorized printf-style functions, one per log level.
// Each is a package-level variable holding a function that behaves like fmt.Printf
// and writes to color.Output (stdout), so callers never touch fatih/color directly.
// Messages carry their own "[LEVEL]" prefix and trailing newline.

// Info logs informational messages in green color.
// Used for the progress of the installation steps (config written, resources installed).
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta color.
// Used for guidance the user has to act on, such as re-sourcing the shell startup file.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red color.
// cmd.Execute prints the terminal error of a run through it before exiting.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It starts out as a no-op so packages (and their tests) can call it before Init runs.
var Debug = func(format string, a ...any) {}

// Init initializes the logger package, specifically enabling or disabling debug logging.
// Parameters:
// - enableDebug: value of the --debug flag.
// When enabled, Debug prints cyan-colored messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		// Swap in a real cyan printer for debug output.
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		// Reset to the no-op so a later Init(false) turns debug output off again.
		Debug = func(format string, a ...any) {}
	}
}
