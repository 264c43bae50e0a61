package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/model"
)

// Worktree is the persisted record of a managed worktree.
type Worktree struct {
	Name          string    `json:"name"`
	DisplayName   string    `json:"displayName,omitempty"`
	ProjectName   string    `json:"projectName"`
	OriginalDir   string    `json:"originalDir"`
	WorktreeDir   string    `json:"worktreeDir"`
	Branch        string    `json:"branch"`
	Ports         []int     `json:"ports"`
	AllocationKey string    `json:"allocationKey"`
	Param         string    `json:"param,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EffectiveName returns the human-facing name: the display name when one
// was recorded, the generated name otherwise.
func (w *Worktree) EffectiveName() string {
	if w.DisplayName != "" {
		return w.DisplayName
	}
	return w.Name
}

// MatchesIdentifier reports whether id names this worktree: by generated
// name, display name, or directory name.
func (w *Worktree) MatchesIdentifier(id string) bool {
	if id == w.Name || (w.DisplayName != "" && id == w.DisplayName) {
		return true
	}
	return id == filepath.Base(w.WorktreeDir)
}

// File returns the state file path for a worktree directory.
func File(worktreeDir string) string {
	return filepath.Join(config.ProjectConfigDir(worktreeDir), config.StateFileName)
}

// Save writes the state file for w under its worktree directory, creating
// the .worktree directory as needed. Failures map to
// model.ErrStateWriteFailed.
func Save(w *Worktree) error {
	dir := config.ProjectConfigDir(w.WorktreeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStateWriteFailed, err)
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStateWriteFailed, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(File(w.WorktreeDir), data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStateWriteFailed, err)
	}
	return nil
}

// Load reads the state file of a worktree directory.
func Load(worktreeDir string) (*Worktree, error) {
	path := File(worktreeDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no state at %s", model.ErrNotInWorktree, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var w Worktree
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &w, nil
}

// Delete removes the state file of a worktree directory. A missing file
// is not an error.
func Delete(worktreeDir string) error {
	err := os.Remove(File(worktreeDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Discover walks up from dir looking for a state file, so commands work
// from any subdirectory of a managed worktree. Returns
// model.ErrNotInWorktree when the walk reaches the filesystem root.
func Discover(dir string) (*Worktree, error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(File(cur)); err == nil {
			return Load(cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("%w: %s is not inside a managed worktree", model.ErrNotInWorktree, dir)
		}
		cur = parent
	}
}

// maxScanDepth bounds how deep FindAll descends below a base directory.
// Worktrees sit at most two levels down (<base>/<project>/<name>), plus
// the .worktree directory itself.
const maxScanDepth = 3

// FindAll scans the base directories for managed worktrees and returns
// them newest first. Unreadable directories are skipped.
func FindAll(baseDirs ...string) []*Worktree {
	var found []*Worktree
	seen := make(map[string]bool)

	for _, base := range baseDirs {
		if base == "" {
			continue
		}
		scan(base, 0, func(w *Worktree) {
			if !seen[w.WorktreeDir] {
				seen[w.WorktreeDir] = true
				found = append(found, w)
			}
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found
}

func scan(dir string, depth int, emit func(*Worktree)) {
	if w, err := Load(dir); err == nil {
		emit(w)
		return
	}
	if depth >= maxScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == config.ProjectConfigDirName {
			continue
		}
		scan(filepath.Join(dir, e.Name()), depth+1, emit)
	}
}

// GroupByProject buckets worktrees by project name, preserving the input
// order within each bucket.
func GroupByProject(worktrees []*Worktree) map[string][]*Worktree {
	groups := make(map[string][]*Worktree)
	for _, w := range worktrees {
		groups[w.ProjectName] = append(groups[w.ProjectName], w)
	}
	return groups
}
