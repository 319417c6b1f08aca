package main

import (
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/spf13/cobra"
)

// NewRestoreCommand creates the 'restore' command for the CLI.
func NewRestoreCommand() *cobra.Command {
	var sourceDir string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "restore <index>",
		Short: "Restore a directory to the state of a snapshot.",
		Long: `Makes the output directory match the snapshot at the given timeline index:
files the snapshot does not contain are deleted and every snapshot file is
written. The output directory must exist. Files that fail are reported and
skipped.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: snapshotCompletions(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finalOutputDir := outputDir
			if finalOutputDir == "" {
				finalOutputDir = sourceDir
			}
			return commands.Restore(sourceDir, args[0], finalOutputDir)
		},
	}

	cmd.Flags().StringVarP(&sourceDir, "directory", "d", ".", "The tracked directory holding the .ftrack data")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "The directory to restore into (defaults to the tracked directory)")
	return cmd
}
