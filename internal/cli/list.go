// Package cli — list.go implements the "worktree list" command.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/git"
	"github.com/mmr-tortoise/worktree/internal/state"
)

type listFlags struct {
	all bool // --all: every project, not just the current one
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed worktrees",
		Long: `List the managed worktrees of the current project, grouped with their
branches, ports, and directories. Outside a repository, or with --all,
lists every project.

Listing also garbage-collects port allocations whose worktree no longer
exists.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "List worktrees of every project")

	return cmd
}

func runList(flags *listFlags) error {
	// list works outside a repository too; project scoping and the
	// personal worktree dir just fall away there.
	var settings config.Merged
	projectFilter := ""

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if gm := git.NewManager(cwd); gm.IsRepo() {
		repoRoot, err := gm.MainRepoRoot()
		if err != nil {
			return err
		}
		settings, err = config.Load(repoRoot)
		if err != nil {
			return err
		}
		if !flags.all {
			projectFilter, err = gm.ProjectName()
			if err != nil {
				return err
			}
		}
	} else {
		settings = config.Merge(config.DefaultSettings(), config.LocalSettings{}, config.UserSettings{})
	}

	// Collect stale port allocations while we are here.
	registry, err := newRegistry(settings)
	if err != nil {
		return err
	}
	if _, err := registry.List(); err != nil {
		warnColor.Fprintf(os.Stderr, "warning: could not read port registry: %v\n", err)
	}

	base, err := config.WorktreesDir()
	if err != nil {
		return err
	}
	worktrees := state.FindAll(base, settings.WorktreeDir)
	if projectFilter != "" {
		filtered := worktrees[:0]
		for _, w := range worktrees {
			if w.ProjectName == projectFilter {
				filtered = append(filtered, w)
			}
		}
		worktrees = filtered
	}

	if IsJSONOutput() {
		if worktrees == nil {
			worktrees = []*state.Worktree{}
		}
		data, err := json.MarshalIndent(worktrees, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(worktrees) == 0 {
		dimColor.Println("No worktrees found.")
		return nil
	}

	groups := state.GroupByProject(worktrees)
	first := true
	for _, w := range worktrees {
		group, ok := groups[w.ProjectName]
		if !ok {
			continue
		}
		delete(groups, w.ProjectName)

		if !first {
			fmt.Println()
		}
		first = false
		headerColor.Printf("%s\n", w.ProjectName)
		for _, g := range group {
			printWorktree(g)
		}
	}
	return nil
}

func printWorktree(w *state.Worktree) {
	name := w.EffectiveName()
	if w.DisplayName != "" {
		name = fmt.Sprintf("%s (%s)", w.DisplayName, w.Name)
	}
	fmt.Printf("  %s\n", name)
	fmt.Printf("    Branch: %s  Ports: %s  Created: %s\n",
		w.Branch, portRange(w.Ports), humanAge(time.Since(w.CreatedAt)))
	dimColor.Printf("    %s\n", w.WorktreeDir)
}

func humanAge(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d months ago", days/30)
	}
}
