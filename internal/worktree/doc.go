// Package worktree orchestrates the lifecycle of managed worktrees.
//
// A worktree moves through a small state machine: ports are allocated,
// the git worktree is created, state is persisted, hooks run, and on
// close everything unwinds in the reverse order with the port window
// released first. Collaborators (git, the port registry, hook execution,
// terminal launching) are injected so the ordering rules can be tested
// without touching the real system.
package worktree
