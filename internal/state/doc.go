// Package state persists per-worktree metadata.
//
// Each managed worktree carries a state.json under its .worktree
// directory. The file is the durable record of the worktree: its ports,
// branch, and origin. Presence of the file is what makes a directory a
// managed worktree; removing it closes the worktree as far as the tool is
// concerned.
package state
