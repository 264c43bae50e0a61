package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds that callers need to distinguish.
// They are matched with errors.Is, usually through one or more layers of
// %w wrapping that add path or key context.
var (
	// ErrNotInWorktree is returned when a lifecycle command runs outside
	// any worktree directory tree (no state.json found walking up).
	ErrNotInWorktree = errors.New("not inside a worktree")

	// ErrNoPortsAvailable is returned when no port window in the configured
	// range satisfies both the registry check and the bind probe.
	ErrNoPortsAvailable = errors.New("no ports available")

	// ErrRegistryLocked is returned when the exclusive registry lock could
	// not be acquired within the bounded wait.
	ErrRegistryLocked = errors.New("port registry is locked by another process")

	// ErrScriptMissing is returned when a required lifecycle script does
	// not exist.
	ErrScriptMissing = errors.New("lifecycle script not found")

	// ErrScriptNotExecutable is returned when a lifecycle script exists but
	// lacks the executable bit.
	ErrScriptNotExecutable = errors.New("lifecycle script is not executable")

	// ErrStateWriteFailed is returned when the worktree state document
	// could not be durably written after resource acquisition succeeded.
	ErrStateWriteFailed = errors.New("failed to write worktree state")
)

// ScriptFailedError reports a lifecycle script that ran and exited non-zero.
// The script's own diagnostics go to the inherited stdio unmodified; this
// error only carries the hook name and exit status.
type ScriptFailedError struct {
	Hook     string
	ExitCode int
}

func (e *ScriptFailedError) Error() string {
	return fmt.Sprintf("%s script exited with status %d", e.Hook, e.ExitCode)
}

// GitError wraps a failed git invocation. The Stderr field carries git's
// diagnostic output verbatim.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %v failed: %s", e.Args, e.Stderr)
	}
	return fmt.Sprintf("git %v failed: %v", e.Args, e.Err)
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// ExitCode defines the CLI exit codes. Scripts and CI systems use these to
// distinguish the error kinds without parsing stderr.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitNotInWorktree indicates the command requires a worktree context.
	ExitNotInWorktree ExitCode = 2

	// ExitNoPortsAvailable indicates port allocation found no free window.
	ExitNoPortsAvailable ExitCode = 3

	// ExitRegistryLocked indicates the registry lock wait timed out.
	ExitRegistryLocked ExitCode = 4

	// ExitGitError indicates a git worktree operation failed.
	ExitGitError ExitCode = 5

	// ExitScriptError indicates a lifecycle script was missing, not
	// executable, or exited non-zero.
	ExitScriptError ExitCode = 6

	// ExitStateError indicates the worktree state document could not be
	// written.
	ExitStateError ExitCode = 7
)

// CLIError is an error that carries an exit code. The CLI layer unwraps it
// at the top level and exits the process with the embedded code.
type CLIError struct {
	Code    ExitCode
	Message string
	Err     error
}

// Error satisfies the error interface, including the underlying error
// when present.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// CodeFor maps an error to its exit code by inspecting the known kinds.
// Unrecognized errors map to ExitGeneralError.
func CodeFor(err error) ExitCode {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}

	var scriptErr *ScriptFailedError
	var gitErr *GitError

	switch {
	case errors.Is(err, ErrNotInWorktree):
		return ExitNotInWorktree
	case errors.Is(err, ErrNoPortsAvailable):
		return ExitNoPortsAvailable
	case errors.Is(err, ErrRegistryLocked):
		return ExitRegistryLocked
	case errors.Is(err, ErrScriptMissing), errors.Is(err, ErrScriptNotExecutable):
		return ExitScriptError
	case errors.As(err, &scriptErr):
		return ExitScriptError
	case errors.As(err, &gitErr):
		return ExitGitError
	case errors.Is(err, ErrStateWriteFailed):
		return ExitStateError
	default:
		return ExitGeneralError
	}
}
