package main

import (
	"pyiron-setup/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// pyiron-setup prepares a workstation for pyiron:
//   - writes the pyiron config file (~/.pyiron) declaring the project and resource paths
//   - registers PYIRONCONFIG in the shell startup file so every shell can find that config
//   - downloads the pyiron-resources archive and unpacks it into the resource directory
//
// Every failure is fatal: the error is printed and the program exits with a non-zero status.
// Nothing is retried and nothing is rolled back.
func main() {
	cmd.Execute()
}
