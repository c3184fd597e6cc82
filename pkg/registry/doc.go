// Package registry provides a generic, thread-safe name to value registry.
// The plugin package keeps its validator and listener factories in one.
package registry
