// Package cli — init.go implements the "worktree init" command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/git"
	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/script"
)

type initFlags struct {
	defaults  bool // --defaults: skip prompts
	noScripts bool // --no-scripts: skip template generation
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a project for worktree management",
		Long: `Set up the .worktree directory in the current repository: team settings
(settings.json, committed), a .gitignore for personal settings, and
starter lifecycle scripts.

Without --defaults, settings are prompted interactively when run from a
terminal.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.defaults, "defaults", false, "Use default settings without prompting")
	cmd.Flags().BoolVar(&flags.noScripts, "no-scripts", false, "Skip generating lifecycle script templates")

	return cmd
}

func runInit(flags *initFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	gm := git.NewManager(cwd)
	if !gm.IsRepo() {
		return model.NewCLIError(model.ExitGeneralError, "not inside a git repository")
	}
	repoRoot, err := gm.MainRepoRoot()
	if err != nil {
		return err
	}

	configDir := config.ProjectConfigDir(repoRoot)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(config.SettingsFile(repoRoot)); err == nil {
		warnColor.Printf("Settings already exist at %s, leaving them untouched\n",
			config.SettingsFile(repoRoot))
	} else {
		settings := config.DefaultSettings()
		var local config.LocalSettings
		if !flags.defaults && stdinIsTTY() {
			settings, local = promptSettings()
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		if err := config.SaveSettings(repoRoot, settings); err != nil {
			return err
		}
		successColor.Printf("Created %s\n", relToRoot(repoRoot, config.SettingsFile(repoRoot)))

		if local.WorktreeDir != "" {
			if err := config.SaveLocalSettings(repoRoot, local); err != nil {
				return err
			}
			successColor.Printf("Created %s\n", relToRoot(repoRoot, config.LocalSettingsFile(repoRoot)))
		}
	}

	// Personal settings never belong in the repository.
	gitignore := filepath.Join(configDir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		content := "# Local settings (user-specific paths)\nsettings.local.json\n# Per-worktree runtime state\nstate.json\n"
		if err := os.WriteFile(gitignore, []byte(content), 0o644); err != nil {
			return err
		}
		successColor.Println("Created .worktree/.gitignore")
	}

	if !flags.noScripts {
		created, err := script.Generate(repoRoot)
		if err != nil {
			return err
		}
		for _, hook := range created {
			successColor.Printf("Created .worktree/%s.sh\n", hook)
		}
		if len(created) == 0 {
			dimColor.Println("Lifecycle scripts already present")
		}
	}

	fmt.Println()
	fmt.Println("Project initialized. Create your first worktree with `worktree new`.")
	return nil
}

// promptSettings asks for the team settings interactively, falling back
// to the defaults on empty input.
func promptSettings() (config.Settings, config.LocalSettings) {
	fmt.Println("Configure project worktree settings (press Enter for defaults):")
	s := config.DefaultSettings()

	s.PortCount = promptInt("Ports per worktree", s.PortCount)
	s.PortRangeStart = promptInt("Port range start", s.PortRangeStart)
	s.PortRangeEnd = promptInt("Port range end", s.PortRangeEnd)
	s.BranchPrefix = promptString("Branch prefix", s.BranchPrefix)

	var local config.LocalSettings
	local.WorktreeDir = promptString("Personal worktree directory (empty for default)", "")
	return s, local
}

func promptInt(label string, def int) int {
	for {
		raw := promptString(label, strconv.Itoa(def))
		n, err := strconv.Atoi(raw)
		if err == nil {
			return n
		}
		warnColor.Printf("Not a number: %s\n", raw)
	}
}

func relToRoot(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
