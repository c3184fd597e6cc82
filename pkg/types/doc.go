// Package types defines the core types shared across imgrename: the Target
// that drives one row of work and the FS abstraction every file operation
// goes through.
package types
