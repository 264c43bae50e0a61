package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmr-tortoise/worktree/internal/model"
)

// Manager runs git commands against a repository.
type Manager struct {
	// Dir is the directory git commands run against via -C.
	Dir string
}

// NewManager returns a manager for the repository containing dir.
func NewManager(dir string) *Manager {
	return &Manager{Dir: dir}
}

// run executes git with -C and returns trimmed stdout. Failures are
// wrapped in model.GitError with the captured stderr.
func (m *Manager) run(args ...string) (string, error) {
	full := append([]string{"-C", m.Dir}, args...)
	cmd := exec.Command("git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &model.GitError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether the manager's directory is inside a git work
// tree.
func (m *Manager) IsRepo() bool {
	out, err := m.run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// RepoRoot returns the top-level directory of the current work tree.
func (m *Manager) RepoRoot() (string, error) {
	return m.run("rev-parse", "--show-toplevel")
}

// MainRepoRoot returns the root of the main repository even when called
// from inside a linked worktree. The first entry of `git worktree list`
// is always the main work tree.
func (m *Manager) MainRepoRoot() (string, error) {
	out, err := m.run("worktree", "list", "--porcelain")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if path, ok := strings.CutPrefix(line, "worktree "); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("no worktree entries in git output")
}

// ProjectName derives the project name from the main repository's
// directory name.
func (m *Manager) ProjectName() (string, error) {
	root, err := m.MainRepoRoot()
	if err != nil {
		return "", err
	}
	return filepath.Base(root), nil
}

// BranchExists reports whether a local branch exists.
func (m *Manager) BranchExists(branch string) bool {
	_, err := m.run("rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// AddWorktree creates a worktree at path. A missing branch is created
// with -b; an existing branch is checked out as-is.
func (m *Manager) AddWorktree(path, branch string) error {
	var err error
	if m.BranchExists(branch) {
		_, err = m.run("worktree", "add", path, branch)
	} else {
		_, err = m.run("worktree", "add", "-b", branch, path)
	}
	return err
}

// RemoveWorktree detaches a worktree from the repository, discarding any
// local changes.
func (m *Manager) RemoveWorktree(path string) error {
	_, err := m.run("worktree", "remove", "--force", path)
	return err
}

// Prune drops worktree bookkeeping for directories that no longer exist.
func (m *Manager) Prune() error {
	_, err := m.run("worktree", "prune")
	return err
}

// LastCommitTime returns the author time of the most recent commit in
// the manager's directory.
func (m *Manager) LastCommitTime() (time.Time, error) {
	out, err := m.run("log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected git log output %q: %w", out, err)
	}
	return time.Unix(secs, 0), nil
}

// ListWorktrees returns the paths of all worktrees of the repository,
// main work tree first.
func (m *Manager) ListWorktrees() ([]string, error) {
	out, err := m.run("worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if path, ok := strings.CutPrefix(line, "worktree "); ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
