// Package output derives destination names and directories and prepares the
// output directory before any file is copied.
//
// The destination file name is the concatenation of every field's file name
// value, in field order. The directory is either fixed by configuration,
// chosen by the caller, or derived from the earliest modification time of
// the files in the batch.
package output
