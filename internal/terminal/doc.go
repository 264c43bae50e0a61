// Package terminal opens a shell in a freshly created worktree.
//
// Launching is strictly best-effort: the worktree is fully usable without
// a terminal, so every failure here degrades to a printed hint rather
// than an error.
package terminal
