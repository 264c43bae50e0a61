// Package script runs the project's lifecycle hooks.
//
// A project opts into lifecycle behavior by committing executable shell
// scripts under .worktree/: setup.sh, run.sh, stop.sh, and close.sh. Each
// hook runs via bash with the worktree directory as its working
// directory, inherited stdio, and a fixed set of WORKTREE_* environment
// variables describing the worktree and its port window.
package script
