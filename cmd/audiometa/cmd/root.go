// Package cmd wires the audiometa CLI's cobra command tree: a probe
// subcommand that runs the engine against a file and a formats subcommand
// that lists the closed format set, mirroring the two-command shape the
// disk-scanning CLI this tool descends from used for its own scan/formats
// split.
package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "audiometa"

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - audio container metadata extraction",
	}

	rootCmd.AddCommand(DefineProbeCommand())
	rootCmd.AddCommand(DefineFormatsCommand())

	return rootCmd.Execute()
}
