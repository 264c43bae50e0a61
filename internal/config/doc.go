// Package config loads and merges the three settings tiers of the worktree
// CLI and defines its well-known filesystem paths.
//
// Settings come from three documents, merged with priority
// project > user > built-in defaults:
//
//   - team settings, committed to the repository at .worktree/settings.json
//     (or settings.yaml)
//   - personal settings, gitignored, at .worktree/settings.local.json
//   - user settings at ~/.config/worktree/config.json
//
// The JSON documents are hand-edited, so they are parsed through
// github.com/tidwall/jsonc and may contain comments and trailing commas.
package config
