package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/worktree/internal/model"
)

// setupTestRepo creates a real git repository with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644))
	run("add", ".")
	run("commit", "-m", "initial commit")

	return dir
}

func TestIsRepo(t *testing.T) {
	repo := setupTestRepo(t)
	assert.True(t, NewManager(repo).IsRepo())
	assert.False(t, NewManager(t.TempDir()).IsRepo())
}

func TestRepoRoot(t *testing.T) {
	repo := setupTestRepo(t)
	sub := filepath.Join(repo, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))

	root, err := NewManager(sub).RepoRoot()
	require.NoError(t, err)
	assertSamePath(t, repo, root)
}

func TestBranchExists(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)

	assert.True(t, m.BranchExists("main"))
	assert.False(t, m.BranchExists("worktree/brave-otter"))
}

func TestAddWorktree_NewBranch(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)
	wt := filepath.Join(t.TempDir(), "brave-otter")

	require.NoError(t, m.AddWorktree(wt, "worktree/brave-otter"))

	assert.FileExists(t, filepath.Join(wt, "README.md"))
	assert.True(t, m.BranchExists("worktree/brave-otter"))
}

func TestAddWorktree_ExistingBranch(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)
	_, err := m.run("branch", "existing")
	require.NoError(t, err)

	wt := filepath.Join(t.TempDir(), "existing-wt")
	require.NoError(t, m.AddWorktree(wt, "existing"))
	assert.FileExists(t, filepath.Join(wt, "README.md"))
}

func TestAddWorktree_Conflict(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)
	wt := filepath.Join(t.TempDir(), "brave-otter")
	require.NoError(t, m.AddWorktree(wt, "worktree/brave-otter"))

	err := m.AddWorktree(filepath.Join(t.TempDir(), "elsewhere"), "worktree/brave-otter")
	require.Error(t, err)

	var gitErr *model.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.NotEmpty(t, gitErr.Stderr, "git diagnostics must be preserved")
}

func TestRemoveWorktree(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)
	wt := filepath.Join(t.TempDir(), "brave-otter")
	require.NoError(t, m.AddWorktree(wt, "worktree/brave-otter"))

	// dirty the worktree; --force must still remove it
	require.NoError(t, os.WriteFile(filepath.Join(wt, "scratch.txt"), []byte("wip"), 0o644))

	require.NoError(t, m.RemoveWorktree(wt))
	assert.NoDirExists(t, wt)
}

func TestPruneAfterManualDelete(t *testing.T) {
	repo := setupTestRepo(t)
	m := NewManager(repo)
	wt := filepath.Join(t.TempDir(), "brave-otter")
	require.NoError(t, m.AddWorktree(wt, "worktree/brave-otter"))

	require.NoError(t, os.RemoveAll(wt))
	require.NoError(t, m.Prune())

	paths, err := m.ListWorktrees()
	require.NoError(t, err)
	assert.Len(t, paths, 1, "only the main work tree remains")
}

func TestLastCommitTime(t *testing.T) {
	repo := setupTestRepo(t)

	ts, err := NewManager(repo).LastCommitTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestMainRepoRoot_FromLinkedWorktree(t *testing.T) {
	repo := setupTestRepo(t)
	wt := filepath.Join(t.TempDir(), "brave-otter")
	require.NoError(t, NewManager(repo).AddWorktree(wt, "worktree/brave-otter"))

	root, err := NewManager(wt).MainRepoRoot()
	require.NoError(t, err)
	assertSamePath(t, repo, root)

	name, err := NewManager(wt).ProjectName()
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(repo), name)
}

// assertSamePath compares paths after symlink resolution; on macOS the
// temp dir sits behind /private.
func assertSamePath(t *testing.T, want, got string) {
	t.Helper()
	w, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	g, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, w, g)
}
