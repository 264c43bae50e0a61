package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCodeFor_SentinelErrors verifies that each sentinel error kind maps to
// its dedicated exit code, including when wrapped with %w context.
func TestCodeFor_SentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"not in worktree", ErrNotInWorktree, ExitNotInWorktree},
		{"no ports", ErrNoPortsAvailable, ExitNoPortsAvailable},
		{"registry locked", ErrRegistryLocked, ExitRegistryLocked},
		{"script missing", ErrScriptMissing, ExitScriptError},
		{"script not executable", ErrScriptNotExecutable, ExitScriptError},
		{"state write", ErrStateWriteFailed, ExitStateError},
		{"unknown", errors.New("boom"), ExitGeneralError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CodeFor(tc.err))

			// Wrapping with context must not change the mapping.
			wrapped := fmt.Errorf("while doing things: %w", tc.err)
			assert.Equal(t, tc.want, CodeFor(wrapped))
		})
	}
}

// TestCodeFor_TypedErrors verifies mapping of the struct-typed error kinds
// (script failure, git failure) and that CLIError carries its own code.
func TestCodeFor_TypedErrors(t *testing.T) {
	scriptErr := &ScriptFailedError{Hook: "run", ExitCode: 3}
	assert.Equal(t, ExitScriptError, CodeFor(scriptErr))
	assert.Contains(t, scriptErr.Error(), "run script")

	gitErr := &GitError{Args: []string{"worktree", "add"}, Stderr: "fatal: oops"}
	assert.Equal(t, ExitGitError, CodeFor(gitErr))
	assert.Contains(t, gitErr.Error(), "fatal: oops")

	cliErr := WrapCLIError(ExitRegistryLocked, "allocate", errors.New("timeout"))
	assert.Equal(t, ExitRegistryLocked, CodeFor(cliErr))
}

// TestCLIError_Unwrap verifies that CLIError participates in the Go 1.13
// error chain so callers can still match the underlying sentinel.
func TestCLIError_Unwrap(t *testing.T) {
	err := WrapCLIError(ExitNoPortsAvailable, "allocate failed", ErrNoPortsAvailable)
	assert.True(t, errors.Is(err, ErrNoPortsAvailable))
}
