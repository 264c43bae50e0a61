// Package cli — stop.go implements the "worktree stop" command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/script"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Run the project's stop script in the current worktree",
		Long: `Execute .worktree/stop.sh in the worktree containing the current
directory, stopping whatever the run script started.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHookInCurrentWorktree(script.Stop)
		},
	}
}
