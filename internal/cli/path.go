// Package cli — path.go implements the "worktree path" command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPathCommand creates the "path" cobra command.
func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [name]",
		Short: "Print a worktree's directory",
		Long: `Print the directory of the named worktree, for use in shell
substitution:

  cd "$(worktree path brave-otter)"

Without a name, prints the root of the worktree containing the current
directory.`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runPath(id)
		},
	}
}

func runPath(id string) error {
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

	// Bare path on stdout, nothing else, so command substitution works.
	fmt.Println(w.WorktreeDir)
	return nil
}
