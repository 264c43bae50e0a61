package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/port"
)

func sampleWorktree(dir string) *Worktree {
	return &Worktree{
		Name:          "brave-otter",
		ProjectName:   "myapp",
		OriginalDir:   "/home/dev/myapp",
		WorktreeDir:   dir,
		Branch:        "worktree/brave-otter",
		Ports:         []int{50000, 50001, 50002},
		AllocationKey: "myapp/brave-otter",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	in := sampleWorktree(dir)
	in.Param = "issue-42"

	require.NoError(t, Save(in))

	out, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoad_MissingIsNotInWorktree(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, model.ErrNotInWorktree)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(sampleWorktree(dir)))

	require.NoError(t, Delete(dir))
	_, err := Load(dir)
	assert.ErrorIs(t, err, model.ErrNotInWorktree)

	// deleting again is fine
	assert.NoError(t, Delete(dir))
}

func TestDiscover_WalksUp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(sampleWorktree(dir)))

	nested := filepath.Join(dir, "src", "server", "handlers")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	w, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, "brave-otter", w.Name)

	w, err = Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, "brave-otter", w.Name)
}

func TestDiscover_OutsideWorktree(t *testing.T) {
	_, err := Discover(t.TempDir())
	assert.ErrorIs(t, err, model.ErrNotInWorktree)
}

func TestEffectiveNameAndMatching(t *testing.T) {
	w := sampleWorktree(t.TempDir())
	assert.Equal(t, "brave-otter", w.EffectiveName())
	assert.True(t, w.MatchesIdentifier("brave-otter"))
	assert.False(t, w.MatchesIdentifier("payments"))

	w.DisplayName = "payments"
	assert.Equal(t, "payments", w.EffectiveName())
	assert.True(t, w.MatchesIdentifier("payments"))
	assert.True(t, w.MatchesIdentifier("brave-otter"))
}

func TestFindAll(t *testing.T) {
	base := t.TempDir()

	older := sampleWorktree(filepath.Join(base, "myapp", "brave-otter"))
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, Save(older))

	newer := sampleWorktree(filepath.Join(base, "other", "calm-heron"))
	newer.Name = "calm-heron"
	newer.ProjectName = "other"
	require.NoError(t, Save(newer))

	custom := t.TempDir()
	flat := sampleWorktree(filepath.Join(custom, "quick-finch"))
	flat.Name = "quick-finch"
	flat.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, Save(flat))

	all := FindAll(base, custom)
	require.Len(t, all, 3)
	assert.Equal(t, "calm-heron", all[0].Name, "newest first")
	assert.Equal(t, "quick-finch", all[2].Name)

	groups := GroupByProject(all)
	assert.Len(t, groups["myapp"], 2)
	assert.Len(t, groups["other"], 1)
}

func TestFindAll_DepthBounded(t *testing.T) {
	base := t.TempDir()
	deep := filepath.Join(base, "a", "b", "c", "d", "too-deep")
	require.NoError(t, Save(sampleWorktree(deep)))

	assert.Empty(t, FindAll(base))
}

func TestLocator(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	global := filepath.Join(home, ".worktree", "worktrees", "myapp", "brave-otter")
	require.NoError(t, Save(sampleWorktree(global)))

	custom := t.TempDir()
	flat := sampleWorktree(filepath.Join(custom, "quick-finch"))
	flat.Name = "quick-finch"
	require.NoError(t, Save(flat))

	loc := NewLocator(custom)
	assert.Equal(t, port.PresenceAlive, loc.Locate("myapp/brave-otter"))
	assert.Equal(t, port.PresenceGone, loc.Locate("myapp/removed"))
	assert.Equal(t, port.PresenceAlive, loc.Locate("quick-finch"))
	assert.Equal(t, port.PresenceUnknown, loc.Locate("elsewhere"),
		"bare keys outside the known roots must be kept")

	noRoots := NewLocator()
	assert.Equal(t, port.PresenceUnknown, noRoots.Locate("quick-finch"))
}
