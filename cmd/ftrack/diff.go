package main

import (
	"fmt"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/spf13/cobra"
)

// NewDiffCommand creates the 'diff' command for the CLI.
func NewDiffCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "diff [from_index to_index]",
		Short: "Show what changed between two snapshots.",
		Long: `Compares two snapshots by timeline index (see 'ftrack list').
Without arguments the latest two snapshots are compared.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("diff takes either no snapshot indexes or two")
			}
			return cobra.MaximumNArgs(2)(cmd, args)
		},
		ValidArgsFunction: snapshotCompletions(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from, to string
			if len(args) == 2 {
				from, to = args[0], args[1]
			}
			return commands.Diff(dir, from, to)
		},
	}

	cmd.Flags().StringVarP(&dir, "directory", "d", ".", "The tracked directory")
	return cmd
}
