// Package git wraps the git worktree plumbing the tool relies on.
//
// All operations shell out to the git binary with -C so no working
// directory changes are needed. Stderr is captured into errors so command
// failures carry git's own diagnostics.
package git
