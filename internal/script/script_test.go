package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/state"
)

func testWorktree(t *testing.T) *state.Worktree {
	t.Helper()
	return &state.Worktree{
		Name:          "brave-otter",
		ProjectName:   "myapp",
		OriginalDir:   "/home/dev/myapp",
		WorktreeDir:   t.TempDir(),
		Branch:        "worktree/brave-otter",
		Ports:         []int{50000, 50001},
		AllocationKey: "myapp/brave-otter",
		CreatedAt:     time.Now(),
	}
}

func writeScript(t *testing.T, w *state.Worktree, hook Hook, body string, mode os.FileMode) {
	t.Helper()
	path := Path(w.WorktreeDir, hook)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env bash\n"+body+"\n"), mode))
}

func TestBuildEnv(t *testing.T) {
	w := testWorktree(t)
	w.Param = "issue-42"
	w.DisplayName = "payments"

	env := BuildEnv(w, Setup)

	assert.Contains(t, env, "WORKTREE_NAME=brave-otter")
	assert.Contains(t, env, "WORKTREE_PROJECT=myapp")
	assert.Contains(t, env, "WORKTREE_DIR="+w.WorktreeDir)
	assert.Contains(t, env, "WORKTREE_ORIGINAL_DIR=/home/dev/myapp")
	assert.Contains(t, env, "WORKTREE_PARAM=issue-42")
	assert.Contains(t, env, "WORKTREE_DISPLAY_NAME=payments")
	assert.Contains(t, env, "WORKTREE_ALLOCATION_KEY=myapp/brave-otter")
	assert.Contains(t, env, "WORKTREE_PORT_0=50000")
	assert.Contains(t, env, "WORKTREE_PORT_1=50001")
}

func TestBuildEnv_ParamOnlyForSetup(t *testing.T) {
	w := testWorktree(t)
	w.Param = "issue-42"

	assert.NotContains(t, BuildEnv(w, Run), "WORKTREE_PARAM=issue-42")
	assert.NotContains(t, BuildEnv(w, Close), "WORKTREE_PARAM=issue-42")
}

func TestRun_ExecutesInWorktreeDirWithEnv(t *testing.T) {
	w := testWorktree(t)
	writeScript(t, w, Run,
		`pwd > observed.txt; echo "$WORKTREE_PORT_0" >> observed.txt`, 0o755)

	require.NoError(t, Runner{}.Run(w, Run))

	data, err := os.ReadFile(filepath.Join(w.WorktreeDir, "observed.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "50000")
}

func TestRun_MissingScript(t *testing.T) {
	err := Runner{}.Run(testWorktree(t), Run)
	assert.ErrorIs(t, err, model.ErrScriptMissing)
}

func TestRun_NotExecutable(t *testing.T) {
	w := testWorktree(t)
	writeScript(t, w, Stop, "true", 0o644)

	err := Runner{}.Run(w, Stop)
	assert.ErrorIs(t, err, model.ErrScriptNotExecutable)
}

func TestRun_NonZeroExit(t *testing.T) {
	w := testWorktree(t)
	writeScript(t, w, Setup, "exit 3", 0o755)

	err := Runner{}.Run(w, Setup)
	var scriptErr *model.ScriptFailedError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "setup", scriptErr.Hook)
	assert.Equal(t, 3, scriptErr.ExitCode)
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()

	created, err := Generate(root)
	require.NoError(t, err)
	assert.Len(t, created, 4)

	for _, hook := range []Hook{Setup, Run, Stop, Close} {
		path := Path(root, hook)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o111, "%s must be executable", path)
	}
}

func TestGenerate_PreservesExisting(t *testing.T) {
	root := t.TempDir()
	custom := "#!/usr/bin/env bash\necho custom\n"
	path := Path(root, Run)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o755))

	created, err := Generate(root)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}
