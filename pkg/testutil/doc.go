// Package testutil builds test environments for rename batches: a
// filesystem (in memory or in a temp directory) with a file tree, and rows
// over the files it holds.
package testutil
