// Package cli — open.go implements the "worktree open" command.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewOpenCommand creates the "open" cobra command.
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [name]",
		Short: "Open a terminal in a worktree",
		Long: `Open a terminal (or tmux session) in the named worktree. Without a
name, reopens the worktree containing the current directory.`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runOpen(id)
		},
	}
}

func runOpen(id string) error {
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
	return pc.Orch.Open(w)
}
