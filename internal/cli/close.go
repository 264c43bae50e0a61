// Package cli — close.go implements the "worktree close" command.
//
// close is the teardown operation: close script, tmux session, port
// window, git worktree, state file — in that order. Port release comes
// before directory removal so a stuck removal can never strand the
// window; script and session failures degrade to warnings and the
// command still exits 0 (the worktree is gone, which is what the user
// asked for).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/git"
	"github.com/mmr-tortoise/worktree/internal/model"
)

type closeFlags struct {
	force bool // --force: skip confirmation
}

// NewCloseCommand creates the "close" cobra command.
func NewCloseCommand() *cobra.Command {
	flags := &closeFlags{}

	cmd := &cobra.Command{
		Use:   "close [name]",
		Short: "Remove a worktree and release its ports",
		Long: `Remove a worktree: run its close script, kill its tmux session, release
its port window, and delete the git worktree and branch bookkeeping.

Without a name, closes the worktree containing the current directory.
Local changes in the worktree are discarded.`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runClose(id, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

func runClose(id string, flags *closeFlags) error {
	pc, err := loadProjectContext()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	w, err := pc.Orch.Resolve(cwd, id)
	if err != nil {
		return err
	}
	// The resolved worktree may belong to a different project than the
	// one the command runs in; git must operate on its repository.
	pc.Orch.Git = git.NewManager(w.OriginalDir)

	if !flags.force {
		if !stdinIsTTY() {
			return model.NewCLIError(model.ExitGeneralError,
				"refusing to close without confirmation; pass --force in non-interactive use")
		}
		question := fmt.Sprintf("Close worktree %s (branch %s, ports %s)? Local changes will be lost.",
			w.EffectiveName(), w.Branch, portRange(w.Ports))
		if !confirm(question) {
			dimColor.Println("Aborted")
			return nil
		}
	}

	return pc.Orch.Close(w)
}
