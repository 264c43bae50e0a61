package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Built-in defaults for team settings.
const (
	DefaultPortCount      = 10
	DefaultPortRangeStart = 50000
	DefaultPortRangeEnd   = 60000
	DefaultBranchPrefix   = "worktree/"
)

// Settings holds the team-shared project settings, committed to the
// repository at .worktree/settings.json (or settings.yaml).
//
// AutoLaunchTerminal and Terminal are optional project-level overrides of
// the user settings; nil/empty means "inherit".
type Settings struct {
	PortCount          int    `json:"portCount" yaml:"portCount"`
	PortRangeStart     int    `json:"portRangeStart" yaml:"portRangeStart"`
	PortRangeEnd       int    `json:"portRangeEnd" yaml:"portRangeEnd"`
	BranchPrefix       string `json:"branchPrefix" yaml:"branchPrefix"`
	AutoLaunchTerminal *bool  `json:"autoLaunchTerminal,omitempty" yaml:"autoLaunchTerminal,omitempty"`
	Terminal           string `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// DefaultSettings returns team settings populated with the built-in
// defaults.
func DefaultSettings() Settings {
	return Settings{
		PortCount:      DefaultPortCount,
		PortRangeStart: DefaultPortRangeStart,
		PortRangeEnd:   DefaultPortRangeEnd,
		BranchPrefix:   DefaultBranchPrefix,
	}
}

// Validate checks the port configuration for internal consistency.
func (s *Settings) Validate() error {
	if s.PortCount < 1 {
		return fmt.Errorf("portCount must be at least 1, got %d", s.PortCount)
	}
	if s.PortRangeStart < 1 || s.PortRangeStart > 65535 {
		return fmt.Errorf("portRangeStart %d out of range (1-65535)", s.PortRangeStart)
	}
	if s.PortRangeEnd <= s.PortRangeStart || s.PortRangeEnd > 65536 {
		return fmt.Errorf("port range [%d, %d) is empty or out of range", s.PortRangeStart, s.PortRangeEnd)
	}
	if s.PortRangeStart+s.PortCount > s.PortRangeEnd {
		return fmt.Errorf("port range [%d, %d) cannot hold a window of %d ports",
			s.PortRangeStart, s.PortRangeEnd, s.PortCount)
	}
	return nil
}

// LocalSettings holds the personal, gitignored project settings.
//
// When WorktreeDir is set, worktrees are created directly under it (no
// per-project subdirectory) and the allocation key drops the project prefix.
type LocalSettings struct {
	WorktreeDir string `json:"worktreeDir,omitempty"`
}

// UserSettings holds the per-user preferences at
// ~/.config/worktree/config.json, shared across projects.
type UserSettings struct {
	AutoLaunchTerminal *bool  `json:"autoLaunchTerminal,omitempty"`
	Terminal           string `json:"terminal,omitempty"`
}

// Merged is the effective runtime configuration after the three tiers are
// combined with priority project > user > defaults.
type Merged struct {
	PortCount          int
	PortRangeStart     int
	PortRangeEnd       int
	BranchPrefix       string
	AutoLaunchTerminal bool
	Terminal           string
	WorktreeDir        string // empty means the global default tree
}

// apply fills the zero-valued fields of a partially decoded team settings
// document with defaults, so a document that only sets portCount still gets
// the default range and prefix.
func (s *Settings) applyDefaults() {
	def := DefaultSettings()
	if s.PortCount == 0 {
		s.PortCount = def.PortCount
	}
	if s.PortRangeStart == 0 {
		s.PortRangeStart = def.PortRangeStart
	}
	if s.PortRangeEnd == 0 {
		s.PortRangeEnd = def.PortRangeEnd
	}
	if s.BranchPrefix == "" {
		s.BranchPrefix = def.BranchPrefix
	}
}

// LoadSettings reads the team settings for a repository root.
//
// settings.json is preferred; settings.yaml is accepted when the JSON
// document does not exist. A missing document yields the defaults without
// error; a present but invalid document is an error.
func LoadSettings(root string) (Settings, error) {
	jsonPath := SettingsFile(root)
	if data, err := os.ReadFile(jsonPath); err == nil {
		var s Settings
		if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
		s.applyDefaults()
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("read %s: %w", jsonPath, err)
	}

	yamlPath := SettingsYAMLFile(root)
	if data, err := os.ReadFile(yamlPath); err == nil {
		var s Settings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		s.applyDefaults()
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("read %s: %w", yamlPath, err)
	}

	return DefaultSettings(), nil
}

// LoadLocalSettings reads the personal settings for a repository root.
// A missing document yields the zero value without error.
func LoadLocalSettings(root string) (LocalSettings, error) {
	path := LocalSettingsFile(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LocalSettings{}, nil
		}
		return LocalSettings{}, fmt.Errorf("read %s: %w", path, err)
	}

	var s LocalSettings
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return LocalSettings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	s.WorktreeDir = expandHome(s.WorktreeDir)
	return s, nil
}

// LoadUserSettings reads ~/.config/worktree/config.json.
// A missing document yields the zero value without error.
func LoadUserSettings() (UserSettings, error) {
	path, err := UserConfigFile()
	if err != nil {
		return UserSettings{}, err
	}
	return loadUserSettingsFrom(path)
}

func loadUserSettingsFrom(path string) (UserSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return UserSettings{}, nil
		}
		return UserSettings{}, fmt.Errorf("read %s: %w", path, err)
	}

	var s UserSettings
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return UserSettings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Load resolves the effective configuration for a repository root by
// merging team, personal, and user settings over the defaults.
func Load(root string) (Merged, error) {
	team, err := LoadSettings(root)
	if err != nil {
		return Merged{}, err
	}
	if err := team.Validate(); err != nil {
		return Merged{}, fmt.Errorf("%s: %w", SettingsFile(root), err)
	}

	local, err := LoadLocalSettings(root)
	if err != nil {
		return Merged{}, err
	}

	user, err := LoadUserSettings()
	if err != nil {
		return Merged{}, err
	}

	return Merge(team, local, user), nil
}

// Merge combines the three settings tiers. Project-level values win over
// user-level values; autoLaunchTerminal defaults to true when no tier
// sets it.
func Merge(team Settings, local LocalSettings, user UserSettings) Merged {
	autoLaunch := true
	if user.AutoLaunchTerminal != nil {
		autoLaunch = *user.AutoLaunchTerminal
	}
	if team.AutoLaunchTerminal != nil {
		autoLaunch = *team.AutoLaunchTerminal
	}

	terminal := user.Terminal
	if team.Terminal != "" {
		terminal = team.Terminal
	}

	return Merged{
		PortCount:          team.PortCount,
		PortRangeStart:     team.PortRangeStart,
		PortRangeEnd:       team.PortRangeEnd,
		BranchPrefix:       team.BranchPrefix,
		AutoLaunchTerminal: autoLaunch,
		Terminal:           terminal,
		WorktreeDir:        local.WorktreeDir,
	}
}

// WorktreeBaseDir returns the directory under which new worktrees for the
// given project are created: the personal worktreeDir when set, otherwise
// <global worktrees dir>/<project>.
func (m Merged) WorktreeBaseDir(projectName string) (string, error) {
	if m.WorktreeDir != "" {
		return m.WorktreeDir, nil
	}
	base, err := WorktreesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, projectName), nil
}

// AllocationKey returns the registry key for a worktree of the given
// project: "<project>/<name>", or just "<name>" when a custom worktreeDir
// removes the per-project layout.
func (m Merged) AllocationKey(projectName, worktreeName string) string {
	if m.WorktreeDir != "" {
		return worktreeName
	}
	return projectName + "/" + worktreeName
}

// SaveSettings writes the team settings document for a repository root.
func SaveSettings(root string, s Settings) error {
	return writeJSON(SettingsFile(root), s)
}

// SaveLocalSettings writes the personal settings document for a repository
// root.
func SaveLocalSettings(root string, s LocalSettings) error {
	return writeJSON(LocalSettingsFile(root), s)
}

// SaveUserSettings writes ~/.config/worktree/config.json, creating the
// directory as needed.
func SaveUserSettings(s UserSettings) error {
	path, err := UserConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeJSON(path, s)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// expandHome expands a leading ~/ to the user's home directory. Used for
// the personal worktreeDir so the document stays portable across machines.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
