package worktree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mmr-tortoise/worktree/internal/config"
	"github.com/mmr-tortoise/worktree/internal/model"
	"github.com/mmr-tortoise/worktree/internal/names"
	"github.com/mmr-tortoise/worktree/internal/port"
	"github.com/mmr-tortoise/worktree/internal/script"
	"github.com/mmr-tortoise/worktree/internal/state"
	"github.com/mmr-tortoise/worktree/internal/terminal"
)

// Phase is a lifecycle state of a worktree. Only Created and Closed are
// durable; the rest exist within a single invocation.
type Phase int

const (
	Uninitialized Phase = iota
	Allocating
	Created
	Running
	Stopped
	Closing
	Closed
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Allocating:
		return "allocating"
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// GitClient is the subset of git operations the orchestrator needs.
type GitClient interface {
	BranchExists(branch string) bool
	AddWorktree(path, branch string) error
	RemoveWorktree(path string) error
	Prune() error
}

// PortAllocator is the subset of the port registry the orchestrator
// needs.
type PortAllocator interface {
	Allocate(key string, count, start, end int) (port.AllocationResult, error)
	Release(key string) ([]int, error)
}

// HookRunner probes and executes lifecycle scripts.
type HookRunner interface {
	Exists(worktreeDir string, hook script.Hook) bool
	Run(w *state.Worktree, hook script.Hook) error
}

// scriptRunner adapts package script to HookRunner.
type scriptRunner struct{}

func (scriptRunner) Exists(dir string, hook script.Hook) bool {
	return script.Exists(dir, hook)
}

func (scriptRunner) Run(w *state.Worktree, hook script.Hook) error {
	return script.Runner{}.Run(w, hook)
}

// Orchestrator drives the worktree lifecycle.
type Orchestrator struct {
	Git      GitClient
	Ports    PortAllocator
	Hooks    HookRunner
	Settings config.Merged

	// Out receives user-facing progress, Errs warnings. Verbose enables
	// phase transition logging on Errs.
	Out     io.Writer
	Errs    io.Writer
	Verbose bool

	// GenerateName produces candidate worktree names; defaults to the
	// adjective-noun generator.
	GenerateName func() string
	// LaunchTerminal and KillSession default to the real terminal
	// package.
	LaunchTerminal func(term terminal.Terminal, project, name, dir string) error
	KillSession    func(sessionName string) (bool, error)
}

// New returns an orchestrator wired to the real git, registry, script,
// and terminal collaborators.
func New(git GitClient, ports PortAllocator, settings config.Merged) *Orchestrator {
	return &Orchestrator{
		Git:            git,
		Ports:          ports,
		Hooks:          scriptRunner{},
		Settings:       settings,
		Out:            os.Stdout,
		Errs:           os.Stderr,
		GenerateName:   names.Generate,
		LaunchTerminal: terminal.Launch,
		KillSession:    terminal.KillSession,
	}
}

func (o *Orchestrator) phase(p Phase) {
	if o.Verbose {
		fmt.Fprintf(o.Errs, "worktree: phase %s\n", p)
	}
}

func (o *Orchestrator) warn(format string, args ...any) {
	fmt.Fprintf(o.Errs, "warning: "+format+"\n", args...)
}

// CreateOptions carries the optional inputs of Create.
type CreateOptions struct {
	// Param is passed to the setup hook as WORKTREE_PARAM.
	Param string
	// DisplayName is an optional human-facing alias for the worktree.
	DisplayName string
}

// Create builds a new worktree for the repository at repoRoot: a unique
// name, a dedicated port window, a git worktree on a fresh branch,
// persisted state, the setup hook, and optionally a terminal.
//
// Ports are allocated before the git worktree exists so a creation
// failure can release them; any failure before the state write releases
// ports obtained in this attempt. A setup hook failure is fatal but does
// not roll back: the state file is already durable and the user can fix
// the hook and close the worktree normally.
func (o *Orchestrator) Create(repoRoot, projectName string, opts CreateOptions) (*state.Worktree, error) {
	baseDir, err := o.Settings.WorktreeBaseDir(projectName)
	if err != nil {
		return nil, err
	}

	name, err := o.uniqueName(baseDir)
	if err != nil {
		return nil, err
	}
	branch := o.Settings.BranchPrefix + name
	worktreeDir := filepath.Join(baseDir, name)
	key := o.Settings.AllocationKey(projectName, name)

	o.phase(Allocating)
	res, err := o.Ports.Allocate(key, o.Settings.PortCount, o.Settings.PortRangeStart, o.Settings.PortRangeEnd)
	if err != nil {
		return nil, err
	}
	// Release only what this attempt took; an idempotent hit on an
	// existing allocation belongs to whoever created it.
	rollbackPorts := func() {
		if res.Existing {
			return
		}
		if _, relErr := o.Ports.Release(key); relErr != nil {
			o.warn("failed to release ports for %s: %v", key, relErr)
		}
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		rollbackPorts()
		return nil, err
	}

	fmt.Fprintf(o.Out, "Creating worktree %s on branch %s\n", name, branch)
	if err := o.Git.AddWorktree(worktreeDir, branch); err != nil {
		rollbackPorts()
		return nil, err
	}

	w := &state.Worktree{
		Name:          name,
		DisplayName:   opts.DisplayName,
		ProjectName:   projectName,
		OriginalDir:   repoRoot,
		WorktreeDir:   worktreeDir,
		Branch:        branch,
		Ports:         res.Ports,
		AllocationKey: key,
		Param:         opts.Param,
		CreatedAt:     time.Now().UTC(),
	}
	if err := state.Save(w); err != nil {
		rollbackPorts()
		return nil, err
	}
	o.phase(Created)
	fmt.Fprintf(o.Out, "Allocated ports %d-%d\n", res.Ports[0], res.Ports[len(res.Ports)-1])

	if o.Hooks.Exists(worktreeDir, script.Setup) {
		fmt.Fprintln(o.Out, "Running setup script")
		if err := o.Hooks.Run(w, script.Setup); err != nil {
			return w, err
		}
	}

	if o.Settings.AutoLaunchTerminal {
		o.openTerminal(w)
	}
	return w, nil
}

// uniqueName draws names until one has neither a branch nor a directory.
func (o *Orchestrator) uniqueName(baseDir string) (string, error) {
	for i := 0; i < 100; i++ {
		name := o.GenerateName()
		if o.Git.BranchExists(o.Settings.BranchPrefix + name) {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, name)); err == nil {
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("could not find an unused worktree name after 100 attempts")
}

// openTerminal launches a terminal in the worktree, best-effort.
func (o *Orchestrator) openTerminal(w *state.Worktree) {
	term := terminal.Detect()
	if o.Settings.Terminal != "" {
		t, err := terminal.FromString(o.Settings.Terminal)
		if err != nil {
			o.warn("%v", err)
			return
		}
		if t == terminal.None {
			return
		}
		term = t
	}
	if term == terminal.None {
		o.warn("no terminal detected; cd %s", w.WorktreeDir)
		return
	}
	if err := o.LaunchTerminal(term, w.ProjectName, w.Name, w.WorktreeDir); err != nil {
		o.warn("could not open terminal: %v", err)
		fmt.Fprintf(o.Out, "cd %s\n", w.WorktreeDir)
	}
}

// Open launches a terminal in an existing worktree. Unlike the launch at
// creation time, a failure here is reported as an error.
func (o *Orchestrator) Open(w *state.Worktree) error {
	term := terminal.Detect()
	if o.Settings.Terminal != "" {
		t, err := terminal.FromString(o.Settings.Terminal)
		if err != nil {
			return err
		}
		term = t
	}
	if term == terminal.None {
		return fmt.Errorf("no terminal available; cd %s", w.WorktreeDir)
	}
	return o.LaunchTerminal(term, w.ProjectName, w.Name, w.WorktreeDir)
}

// RunHook executes the run or stop hook of the worktree containing w.
func (o *Orchestrator) RunHook(w *state.Worktree, hook script.Hook) error {
	if hook == script.Run {
		o.phase(Running)
	} else if hook == script.Stop {
		o.phase(Stopped)
	}
	return o.Hooks.Run(w, hook)
}

// Close tears the worktree down. The close hook, tmux session kill, and
// port release are all best-effort: ports are released before the
// worktree is removed, and a failed `git worktree remove` falls back to
// deleting the directory and pruning. Close only returns an error when
// the worktree directory could not be removed at all; everything else is
// a warning.
func (o *Orchestrator) Close(w *state.Worktree) error {
	o.phase(Closing)

	if o.Hooks.Exists(w.WorktreeDir, script.Close) {
		fmt.Fprintln(o.Out, "Running close script")
		if err := o.Hooks.Run(w, script.Close); err != nil {
			o.warn("close script failed: %v", err)
		}
	}

	session := terminal.SessionName(w.ProjectName, w.Name)
	if killed, err := o.KillSession(session); err != nil {
		o.warn("could not kill tmux session %s: %v", session, err)
	} else if killed && o.Verbose {
		fmt.Fprintf(o.Errs, "worktree: killed tmux session %s\n", session)
	}

	// Ports go back to the pool before the directory is touched; a
	// removal failure must never strand the window.
	if ports, err := o.Ports.Release(w.AllocationKey); err != nil {
		o.warn("failed to release ports for %s: %v", w.AllocationKey, err)
	} else if len(ports) > 0 {
		fmt.Fprintf(o.Out, "Released ports %d-%d\n", ports[0], ports[len(ports)-1])
	}

	// The state file goes first so a half-removed directory no longer
	// reads as a live worktree.
	if err := state.Delete(w.WorktreeDir); err != nil {
		o.warn("could not delete state file: %v", err)
	}

	if err := o.Git.RemoveWorktree(w.WorktreeDir); err != nil {
		o.warn("git worktree remove failed: %v", err)
		if err := os.RemoveAll(w.WorktreeDir); err != nil {
			return fmt.Errorf("remove worktree directory %s: %w", w.WorktreeDir, err)
		}
		if err := o.Git.Prune(); err != nil {
			o.warn("git worktree prune failed: %v", err)
		}
	}

	o.phase(Closed)
	fmt.Fprintf(o.Out, "Closed worktree %s\n", w.EffectiveName())
	return nil
}

// Resolve finds the worktree to operate on: the one containing dir when
// id is empty, otherwise the worktree matching id among all known
// worktrees of the configured roots.
func (o *Orchestrator) Resolve(dir, id string) (*state.Worktree, error) {
	if id == "" {
		return state.Discover(dir)
	}

	base, err := config.WorktreesDir()
	if err != nil {
		return nil, err
	}
	for _, w := range state.FindAll(base, o.Settings.WorktreeDir) {
		if w.MatchesIdentifier(id) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: no worktree named %q", model.ErrNotInWorktree, id)
}
