package main

import (
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/spf13/cobra"
)

// NewSnapCommand creates the 'snap' command for the CLI.
func NewSnapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snap [directory]",
		Short: "Capture the current state of a directory.",
		Long: `Scans the directory (default: current directory), hashes every file that
is not excluded by .ftrackignore and appends a new snapshot to its timeline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return commands.Snap(dir)
		},
	}
}
