// Package paths provides centralized path handling for imgrename.
// It implements XDG Base Directory specification compliance for the
// configuration, state and cache locations the tool uses.
package paths
