package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/port"
)

// Locator resolves port allocation keys to worktree state files so the
// registry can collect orphaned entries.
//
// Keys of the form "<project>/<name>" map into the global worktrees tree.
// Bare "<name>" keys come from personal worktreeDir overrides; they are
// checked against the extra roots and kept when no root resolves them,
// since collecting a live allocation would let a later invocation hand
// out overlapping ports.
type Locator struct {
	// ExtraRoots are personal worktree directories to check for bare keys,
	// typically the current project's configured worktreeDir.
	ExtraRoots []string
}

// NewLocator returns a locator over the global worktrees tree plus the
// given personal roots.
func NewLocator(extraRoots ...string) *Locator {
	return &Locator{ExtraRoots: extraRoots}
}

// Locate implements port.Locator.
func (l *Locator) Locate(key string) port.Presence {
	project, name, scoped := strings.Cut(key, "/")

	if scoped {
		base, err := config.WorktreesDir()
		if err != nil {
			return port.PresenceUnknown
		}
		if stateFileExists(filepath.Join(base, project, name)) {
			return port.PresenceAlive
		}
		return port.PresenceGone
	}

	if len(l.ExtraRoots) == 0 {
		return port.PresenceUnknown
	}
	for _, root := range l.ExtraRoots {
		if stateFileExists(filepath.Join(root, key)) {
			return port.PresenceAlive
		}
	}
	// The key may belong to a worktreeDir configured in another project,
	// so absence under the known roots is not proof of death.
	return port.PresenceUnknown
}

func stateFileExists(worktreeDir string) bool {
	_, err := os.Stat(File(worktreeDir))
	return err == nil
}
