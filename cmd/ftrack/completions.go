package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/spf13/cobra"
)

// snapshotCompletions suggests timeline indexes for the first maxArgs
// positional arguments.
func snapshotCompletions(maxArgs int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		dir, err := os.Getwd()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		if dirFlag, err := cmd.Flags().GetString("directory"); err == nil && dirFlag != "" {
			dir = dirFlag
		}

		// Completion output goes to the shell, so logging stays off.
		quiet := lib.NewLogger(slog.LevelError+1, os.Stderr)
		m, err := lib.LoadManager(dir, quiet)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var suggestions []string
		for _, e := range m.Entries() {
			suggestions = append(suggestions, fmt.Sprintf("%d\t#%d %s - %d files",
				e.Index, e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.FileCount))
		}
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}
