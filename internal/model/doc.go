// Package model defines the shared error kinds, exit codes, and the
// CLIError type for the worktree CLI.
//
// This package contains no behavior beyond error construction. Every other
// internal package reports failures through the kinds defined here so the
// CLI layer can translate them into distinct process exit codes.
package model
