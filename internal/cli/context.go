package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/git"
	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/port"
	"github.com/mmr-tortoise/worktree/internal/state"
	"github.com/mmr-tortoise/worktree/internal/worktree"
)

// projectContext bundles everything a subcommand needs to operate on the
// current project: the main repository, its merged settings, the port
// registry, and a wired orchestrator.
type projectContext struct {
	Git         *git.Manager
	RepoRoot    string
	ProjectName string
	Settings    config.Merged
	Registry    *port.Registry
	Orch        *worktree.Orchestrator
}

// loadProjectContext resolves the project from the current working
// directory. Works from the main checkout and from inside any of its
// worktrees, since MainRepoRoot follows git's own bookkeeping.
func loadProjectContext() (*projectContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	gm := git.NewManager(cwd)
	if !gm.IsRepo() {
		return nil, model.NewCLIError(model.ExitGeneralError, "not inside a git repository")
	}

	repoRoot, err := gm.MainRepoRoot()
	if err != nil {
		return nil, err
	}
	projectName := filepath.Base(repoRoot)
	VerboseLog("project %s at %s", projectName, repoRoot)

	settings, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	registry, err := newRegistry(settings)
	if err != nil {
		return nil, err
	}

	orch := worktree.New(git.NewManager(repoRoot), registry, settings)
	orch.Verbose = verbose

	return &projectContext{
		Git:         git.NewManager(repoRoot),
		RepoRoot:    repoRoot,
		ProjectName: projectName,
		Settings:    settings,
		Registry:    registry,
		Orch:        orch,
	}, nil
}

// newRegistry opens the user-wide port registry with a locator that can
// verify worktrees in the global tree and, when configured, the personal
// worktree directory.
func newRegistry(settings config.Merged) (*port.Registry, error) {
	path, err := config.RegistryFile()
	if err != nil {
		return nil, err
	}
	r := port.NewRegistry(path)
	if settings.WorktreeDir != "" {
		r.SetLocator(state.NewLocator(settings.WorktreeDir))
	} else {
		r.SetLocator(state.NewLocator())
	}
	return r, nil
}

// requireInitialized fails with a hint when the project has no committed
// settings yet, so `new` does not silently create worktrees with defaults
// the team never agreed on.
func requireInitialized(repoRoot string) error {
	if _, err := os.Stat(config.SettingsFile(repoRoot)); err == nil {
		return nil
	}
	if _, err := os.Stat(config.SettingsYAMLFile(repoRoot)); err == nil {
		return nil
	}
	return model.NewCLIError(model.ExitGeneralError,
		fmt.Sprintf("project is not initialized; run `worktree init` in %s first", repoRoot))
}
