package main

import (
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'list' command for the CLI.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [directory]",
		Short: "List the snapshot timeline of a directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return commands.List(dir)
		},
	}
}
