// Package cli — cleanup.go implements the "worktree cleanup" command.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/git"
	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/state"
	"github.com/mmr-tortoise/worktree/internal/worktree"
)

type cleanupFlags struct {
	olderThan int  // --older-than: only worktrees inactive at least N days
	force     bool // --force: close without confirmation
}

// NewCleanupCommand creates the "cleanup" cobra command.
func NewCleanupCommand() *cobra.Command {
	flags := &cleanupFlags{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Close stale worktrees in bulk",
		Long: `Find worktrees across all projects, ordered by inactivity (time since
their last commit, or their creation when they have none), and close
them after confirmation.

Examples:
  worktree cleanup --older-than 30
  worktree cleanup --older-than 7 --force`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(flags)
		},
	}

	cmd.Flags().IntVar(&flags.olderThan, "older-than", 0, "Only close worktrees inactive at least N days")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Close without confirmation")

	return cmd
}

// staleWorktree pairs a worktree with its measured inactivity.
type staleWorktree struct {
	w            *state.Worktree
	daysInactive int
}

func runCleanup(flags *cleanupFlags) error {
	var localDir string
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if gm := git.NewManager(cwd); gm.IsRepo() {
		if repoRoot, err := gm.MainRepoRoot(); err == nil {
			if settings, err := config.Load(repoRoot); err == nil {
				localDir = settings.WorktreeDir
			}
		}
	}

	base, err := config.WorktreesDir()
	if err != nil {
		return err
	}

	var stale []staleWorktree
	for _, w := range state.FindAll(base, localDir) {
		days := daysInactive(w)
		if days >= flags.olderThan {
			stale = append(stale, staleWorktree{w: w, daysInactive: days})
		}
	}
	if len(stale) == 0 {
		if flags.olderThan > 0 {
			dimColor.Printf("No worktrees older than %d days.\n", flags.olderThan)
		} else {
			dimColor.Println("No worktrees found.")
		}
		return nil
	}

	fmt.Printf("Worktrees to close:\n")
	for _, s := range stale {
		marker := ""
		if s.daysInactive > 30 {
			marker = warnColor.Sprint(" (stale)")
		}
		fmt.Printf("  %s/%s — inactive %s%s\n",
			s.w.ProjectName, s.w.EffectiveName(), humanDays(s.daysInactive), marker)
	}

	if !flags.force {
		if !stdinIsTTY() {
			return model.NewCLIError(model.ExitGeneralError,
				"refusing to clean up without confirmation; pass --force in non-interactive use")
		}
		if !confirm(fmt.Sprintf("Close these %d worktrees? Local changes will be lost.", len(stale))) {
			dimColor.Println("Aborted")
			return nil
		}
	}

	closed := 0
	for _, s := range stale {
		if err := closeOne(s.w); err != nil {
			warnColor.Fprintf(os.Stderr, "warning: could not close %s: %v\n", s.w.EffectiveName(), err)
			continue
		}
		closed++
	}
	successColor.Printf("Closed %d of %d worktrees\n", closed, len(stale))
	return nil
}

// closeOne builds an orchestrator scoped to the worktree's own repository
// and closes it.
func closeOne(w *state.Worktree) error {
	settings, err := config.Load(w.OriginalDir)
	if err != nil {
		return err
	}
	registry, err := newRegistry(settings)
	if err != nil {
		return err
	}
	orch := worktree.New(git.NewManager(w.OriginalDir), registry, settings)
	orch.Verbose = verbose
	return orch.Close(w)
}

// daysInactive measures how long a worktree has gone without commits,
// falling back to its creation time when the branch has none of its own.
func daysInactive(w *state.Worktree) int {
	since := w.CreatedAt
	if last, err := git.NewManager(w.WorktreeDir).LastCommitTime(); err == nil && last.After(since) {
		since = last
	}
	days := int(time.Since(since).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func humanDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day"
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		return fmt.Sprintf("%d weeks", days/7)
	default:
		return fmt.Sprintf("%d months", days/30)
	}
}
