// Package cli — run.go implements the "worktree run" command.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/script"
	"github.com/mmr-tortoise/worktree/internal/state"
)

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the project's run script in the current worktree",
		Long: `Execute .worktree/run.sh in the worktree containing the current
directory, with the worktree's ports exposed as WORKTREE_PORT_0..N.
The script's output streams directly to this terminal.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHookInCurrentWorktree(script.Run)
		},
	}
}

// runHookInCurrentWorktree discovers the enclosing worktree and executes
// one of its lifecycle scripts. Shared by run and stop.
func runHookInCurrentWorktree(hook script.Hook) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	w, err := state.Discover(cwd)
	if err != nil {
		return err
	}
	VerboseLog("running %s script for %s", hook, w.EffectiveName())
	return script.Runner{}.Run(w, hook)
}
