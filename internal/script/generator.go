package script

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/worktree/internal/config"
)

//go:embed templates/*.sh
var templates embed.FS

// Generate writes starter lifecycle scripts into the repository's
// .worktree directory. Existing scripts are left untouched so re-running
// init never clobbers a project's hooks. Returns the hooks it created.
func Generate(repoRoot string) ([]Hook, error) {
	dir := config.ProjectConfigDir(repoRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var created []Hook
	for _, hook := range []Hook{Setup, Run, Stop, Close} {
		dst := filepath.Join(dir, string(hook)+".sh")
		if _, err := os.Stat(dst); err == nil {
			continue
		}

		data, err := templates.ReadFile("templates/" + string(hook) + ".sh")
		if err != nil {
			return created, fmt.Errorf("template for %s: %w", hook, err)
		}
		if err := os.WriteFile(dst, data, 0o755); err != nil {
			return created, fmt.Errorf("write %s: %w", dst, err)
		}
		created = append(created, hook)
	}
	return created, nil
}
