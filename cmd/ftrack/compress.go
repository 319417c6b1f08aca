package main

import (
	"fmt"
	"strconv"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/spf13/cobra"
)

// NewCompressCommand creates the 'compress' command for the CLI.
func NewCompressCommand() *cobra.Command {
	var dir, storage string

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Store the timeline as a base snapshot plus deltas.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Compress(dir, storage)
		},
	}

	cmd.Flags().StringVarP(&dir, "directory", "d", ".", "The tracked directory")
	cmd.Flags().StringVarP(&storage, "storage", "s", "", "Storage directory (defaults to storage_dir from config.yaml)")
	return cmd
}

// NewDecompressCommand creates the 'decompress' command for the CLI.
func NewDecompressCommand() *cobra.Command {
	var dir, storage string

	cmd := &cobra.Command{
		Use:   "decompress <snapshot_id>",
		Short: "Rebuild a snapshot from compressed storage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q", args[0])
			}
			return commands.Decompress(dir, id, storage)
		},
	}

	cmd.Flags().StringVarP(&dir, "directory", "d", ".", "The tracked directory")
	cmd.Flags().StringVarP(&storage, "storage", "s", "", "Storage directory (defaults to storage_dir from config.yaml)")
	return cmd
}
