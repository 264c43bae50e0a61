// Package port implements the persistent port allocation registry.
//
// Every worktree gets a contiguous window of TCP ports from a configured
// range. Allocations are recorded in a single JSON document shared by all
// projects of the user, guarded by an advisory file lock so concurrent
// invocations never hand out overlapping windows. Windows for distinct
// keys are always disjoint, and stale entries whose worktree no longer
// exists are collected whenever the registry is read.
package port
