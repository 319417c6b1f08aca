package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "ftrack",
		Short:         "Track, compare and restore directory snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("log-level") {
				return nil
			}
			level, err := lib.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(lib.NewLogger(level, os.Stderr))
			return commands.SetLogLevel(logLevel)
		},
	}
	// Shell scripts come from cobra's built-in 'completion' command.
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error (overrides config.yaml)")

	rootCmd.AddCommand(NewSnapCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewDiffCommand())
	rootCmd.AddCommand(NewRestoreCommand())
	rootCmd.AddCommand(NewCompressCommand())
	rootCmd.AddCommand(NewDecompressCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
