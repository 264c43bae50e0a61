package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names used inside a project's .worktree directory.
const (
	// ProjectConfigDirName is the per-project configuration directory,
	// committed to the repository.
	ProjectConfigDirName = ".worktree"

	// SettingsFileName is the team settings document.
	SettingsFileName = "settings.json"

	// SettingsYAMLFileName is the YAML variant of the team settings
	// document, used when settings.json is absent.
	SettingsYAMLFileName = "settings.yaml"

	// LocalSettingsFileName is the personal (gitignored) settings document.
	LocalSettingsFileName = "settings.local.json"

	// StateFileName is the per-worktree state document written into the
	// worktree's .worktree directory on creation.
	StateFileName = "state.json"
)

// GlobalDir returns the tool's home directory (~/.worktree), which holds the
// host-wide port registry and the default worktree storage tree.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".worktree"), nil
}

// WorktreesDir returns the default worktree storage directory
// (~/.worktree/worktrees). Worktrees live at <WorktreesDir>/<project>/<name>
// unless a personal worktreeDir overrides the location.
func WorktreesDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "worktrees"), nil
}

// RegistryFile returns the path of the host-wide port allocation document
// (~/.worktree/port-allocations.json), shared by every project on the host.
func RegistryFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "port-allocations.json"), nil
}

// UserConfigFile returns the user settings path
// (~/.config/worktree/config.json).
func UserConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "worktree", "config.json"), nil
}

// ProjectConfigDir returns the .worktree directory for a repository root.
func ProjectConfigDir(root string) string {
	return filepath.Join(root, ProjectConfigDirName)
}

// SettingsFile returns the team settings path for a repository root.
func SettingsFile(root string) string {
	return filepath.Join(ProjectConfigDir(root), SettingsFileName)
}

// SettingsYAMLFile returns the YAML team settings path for a repository root.
func SettingsYAMLFile(root string) string {
	return filepath.Join(ProjectConfigDir(root), SettingsYAMLFileName)
}

// LocalSettingsFile returns the personal settings path for a repository root.
func LocalSettingsFile(root string) string {
	return filepath.Join(ProjectConfigDir(root), LocalSettingsFileName)
}
