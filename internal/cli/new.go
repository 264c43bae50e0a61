// Package cli — new.go implements the "worktree new" command.
//
// new is the primary user-facing operation. It generates a worktree name,
// allocates a dedicated port window, creates the git worktree on a fresh
// branch, persists state, runs the project's setup script, and opens a
// terminal in the new directory.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/worktree"
)

type newFlags struct {
	name string // --name: display name for the worktree
}

// NewNewCommand creates the "new" cobra command.
func NewNewCommand() *cobra.Command {
	flags := &newFlags{}

	cmd := &cobra.Command{
		Use:   "new [param]",
		Short: "Create a worktree with its own port window",
		Long: `Create a new git worktree with a generated adjective-noun name, a fresh
branch, and a dedicated window of TCP ports.

The optional param argument is passed to the project's setup script as
WORKTREE_PARAM, typically an issue number or feature description.

Examples:
  worktree new
  worktree new issue-42
  worktree new --name payments "rework the payments flow"`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			param := ""
			if len(args) == 1 {
				param = args[0]
			}
			return runNew(param, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Display name for the worktree")

	return cmd
}

func runNew(param string, flags *newFlags) error {
	pc, err := loadProjectContext()
	if err != nil {
		return err
	}
	if err := requireInitialized(pc.RepoRoot); err != nil {
		return err
	}

	w, err := pc.Orch.Create(pc.RepoRoot, pc.ProjectName, worktree.CreateOptions{
		Param:       param,
		DisplayName: flags.name,
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	successColor.Printf("Created worktree %s\n", w.EffectiveName())
	fmt.Printf("  Branch: %s\n", w.Branch)
	fmt.Printf("  Ports:  %s\n", portRange(w.Ports))
	fmt.Printf("  Path:   %s\n", w.WorktreeDir)
	return nil
}
