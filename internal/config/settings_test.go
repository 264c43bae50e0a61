package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSettings_MissingReturnsDefaults(t *testing.T) {
	root := t.TempDir()

	s, err := LoadSettings(root)
	require.NoError(t, err)

	assert.Equal(t, DefaultPortCount, s.PortCount)
	assert.Equal(t, DefaultPortRangeStart, s.PortRangeStart)
	assert.Equal(t, DefaultPortRangeEnd, s.PortRangeEnd)
	assert.Equal(t, DefaultBranchPrefix, s.BranchPrefix)
}

func TestLoadSettings_JSONWithComments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, SettingsFile(root), `{
  // five ports is plenty for this project
  "portCount": 5,
  "portRangeStart": 40000,
  "portRangeEnd": 41000,
}`)

	s, err := LoadSettings(root)
	require.NoError(t, err)

	assert.Equal(t, 5, s.PortCount)
	assert.Equal(t, 40000, s.PortRangeStart)
	assert.Equal(t, 41000, s.PortRangeEnd)
	assert.Equal(t, DefaultBranchPrefix, s.BranchPrefix, "unset fields fall back to defaults")
}

func TestLoadSettings_YAMLFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, SettingsYAMLFile(root), "portCount: 3\nbranchPrefix: wt/\n")

	s, err := LoadSettings(root)
	require.NoError(t, err)

	assert.Equal(t, 3, s.PortCount)
	assert.Equal(t, "wt/", s.BranchPrefix)
	assert.Equal(t, DefaultPortRangeStart, s.PortRangeStart)
}

func TestLoadSettings_JSONWinsOverYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, SettingsFile(root), `{"portCount": 7}`)
	writeFile(t, SettingsYAMLFile(root), "portCount: 3\n")

	s, err := LoadSettings(root)
	require.NoError(t, err)
	assert.Equal(t, 7, s.PortCount)
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, SettingsFile(root), `{"portCount": `)

	_, err := LoadSettings(root)
	assert.Error(t, err)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"zero count", func(s *Settings) { s.PortCount = 0 }, true},
		{"inverted range", func(s *Settings) { s.PortRangeStart = 60000; s.PortRangeEnd = 50000 }, true},
		{"range too narrow for window", func(s *Settings) { s.PortRangeStart = 50000; s.PortRangeEnd = 50005 }, true},
		{"start out of range", func(s *Settings) { s.PortRangeStart = 0 }, true},
		{"exact fit", func(s *Settings) { s.PortCount = 10; s.PortRangeStart = 50000; s.PortRangeEnd = 50010 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadLocalSettings(t *testing.T) {
	root := t.TempDir()

	s, err := LoadLocalSettings(root)
	require.NoError(t, err)
	assert.Empty(t, s.WorktreeDir)

	writeFile(t, LocalSettingsFile(root), `{"worktreeDir": "/tmp/wt"}`)
	s, err = LoadLocalSettings(root)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wt", s.WorktreeDir)
}

func TestLoadLocalSettings_ExpandsHome(t *testing.T) {
	root := t.TempDir()
	writeFile(t, LocalSettingsFile(root), `{"worktreeDir": "~/trees"}`)

	s, err := LoadLocalSettings(root)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "trees"), s.WorktreeDir)
}

func TestMerge_Priorities(t *testing.T) {
	off := false
	on := true

	t.Run("auto launch defaults true", func(t *testing.T) {
		m := Merge(DefaultSettings(), LocalSettings{}, UserSettings{})
		assert.True(t, m.AutoLaunchTerminal)
	})

	t.Run("user disables auto launch", func(t *testing.T) {
		m := Merge(DefaultSettings(), LocalSettings{}, UserSettings{AutoLaunchTerminal: &off})
		assert.False(t, m.AutoLaunchTerminal)
	})

	t.Run("project overrides user", func(t *testing.T) {
		team := DefaultSettings()
		team.AutoLaunchTerminal = &on
		team.Terminal = "iterm2"
		m := Merge(team, LocalSettings{}, UserSettings{AutoLaunchTerminal: &off, Terminal: "tmux"})
		assert.True(t, m.AutoLaunchTerminal)
		assert.Equal(t, "iterm2", m.Terminal)
	})

	t.Run("user terminal inherited when project silent", func(t *testing.T) {
		m := Merge(DefaultSettings(), LocalSettings{}, UserSettings{Terminal: "tmux"})
		assert.Equal(t, "tmux", m.Terminal)
	})
}

func TestMerged_AllocationKey(t *testing.T) {
	m := Merge(DefaultSettings(), LocalSettings{}, UserSettings{})
	assert.Equal(t, "myapp/feature-x", m.AllocationKey("myapp", "feature-x"))

	m.WorktreeDir = "/tmp/trees"
	assert.Equal(t, "feature-x", m.AllocationKey("myapp", "feature-x"),
		"custom worktree dir drops the project prefix")
}

func TestMerged_WorktreeBaseDir(t *testing.T) {
	m := Merge(DefaultSettings(), LocalSettings{WorktreeDir: "/tmp/trees"}, UserSettings{})
	dir, err := m.WorktreeBaseDir("myapp")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/trees", dir)

	m.WorktreeDir = ""
	dir, err = m.WorktreeBaseDir("myapp")
	require.NoError(t, err)
	assert.Equal(t, "myapp", filepath.Base(dir))
}

func TestSaveAndReloadSettings(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(ProjectConfigDir(root), 0o755))

	in := DefaultSettings()
	in.PortCount = 4
	require.NoError(t, SaveSettings(root, in))

	out, err := LoadSettings(root)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
