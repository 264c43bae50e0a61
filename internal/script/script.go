package script

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/state"
)

// Hook identifies a lifecycle script.
type Hook string

const (
	// Setup runs once after the worktree is created.
	Setup Hook = "setup"
	// Run starts the worktree's services.
	Run Hook = "run"
	// Stop stops the worktree's services.
	Stop Hook = "stop"
	// Close runs before the worktree is removed.
	Close Hook = "close"
)

// Path returns the script file for a hook under a worktree directory.
func Path(worktreeDir string, hook Hook) string {
	return filepath.Join(config.ProjectConfigDir(worktreeDir), string(hook)+".sh")
}

// Exists reports whether the hook's script file is present.
func Exists(worktreeDir string, hook Hook) bool {
	_, err := os.Stat(Path(worktreeDir, hook))
	return err == nil
}

// BuildEnv returns the hook's environment: the parent environment plus
// the WORKTREE_* contract. WORKTREE_PARAM is only set for the setup hook,
// and only when a parameter was given.
func BuildEnv(w *state.Worktree, hook Hook) []string {
	env := os.Environ()
	env = append(env,
		"WORKTREE_NAME="+w.Name,
		"WORKTREE_PROJECT="+w.ProjectName,
		"WORKTREE_DIR="+w.WorktreeDir,
		"WORKTREE_ORIGINAL_DIR="+w.OriginalDir,
		"WORKTREE_ALLOCATION_KEY="+w.AllocationKey,
	)
	if w.DisplayName != "" {
		env = append(env, "WORKTREE_DISPLAY_NAME="+w.DisplayName)
	}
	if hook == Setup && w.Param != "" {
		env = append(env, "WORKTREE_PARAM="+w.Param)
	}
	for i, p := range w.Ports {
		env = append(env, fmt.Sprintf("WORKTREE_PORT_%d=%d", i, p))
	}
	return env
}

// Runner executes lifecycle scripts for a worktree.
type Runner struct{}

// Run executes the hook's script via bash with the worktree directory as
// working directory and stdio inherited from the tool.
//
// A missing script yields model.ErrScriptMissing, a present but
// non-executable script model.ErrScriptNotExecutable, and a non-zero exit
// a model.ScriptFailedError carrying the status.
func (Runner) Run(w *state.Worktree, hook Hook) error {
	path := Path(w.WorktreeDir, hook)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", model.ErrScriptMissing, path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s (try chmod +x)", model.ErrScriptNotExecutable, path)
	}

	cmd := exec.Command("bash", path)
	cmd.Dir = w.WorktreeDir
	cmd.Env = BuildEnv(w, hook)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &model.ScriptFailedError{Hook: string(hook), ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", path, err)
	}
	return nil
}
