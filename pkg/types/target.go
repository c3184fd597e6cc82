package types

import (
	"path/filepath"
	"sort"
	"time"
)

// Target identifies one unit of work: a source file and the root directory it
// was discovered under. Targets are immutable once created.
type Target struct {
	path       string
	root       string
	modTime    time.Time
	size       int64
	properties map[string]string
}

// NewTarget creates a target for path discovered under root. Properties are
// copied so later mutation of the caller's map has no effect.
func NewTarget(path, root string, properties map[string]string) Target {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	return Target{
		path:       filepath.Clean(path),
		root:       filepath.Clean(root),
		properties: props,
	}
}

// WithFileInfo returns a copy of t carrying the source file's modification
// time and size, as captured when the target was discovered.
func (t Target) WithFileInfo(modTime time.Time, size int64) Target {
	t.modTime = modTime
	t.size = size
	return t
}

// ModTime returns the modification time captured at discovery
func (t Target) ModTime() time.Time { return t.modTime }

// Size returns the file size captured at discovery
func (t Target) Size() int64 { return t.size }

// Path returns the full path to the source file
func (t Target) Path() string { return t.path }

// Root returns the directory the target was discovered under
func (t Target) Root() string { return t.root }

// Name returns the base file name of the target
func (t Target) Name() string { return filepath.Base(t.path) }

// IsZero reports whether the target was never initialized
func (t Target) IsZero() bool { return t.path == "" || t.path == "." }

// RelativeDir returns the directory of the target relative to its root, using
// forward slashes. Files directly under the root return "".
func (t Target) RelativeDir() string {
	rel, err := filepath.Rel(t.root, filepath.Dir(t.path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// RelativePath returns the path of the target relative to its root
func (t Target) RelativePath() string {
	rel, err := filepath.Rel(t.root, t.path)
	if err != nil {
		return t.Name()
	}
	return filepath.ToSlash(rel)
}

// Property returns a value from the target's property bag
func (t Target) Property(key string) (string, bool) {
	v, ok := t.properties[key]
	return v, ok
}

// PropertyKeys returns the property names in sorted order
func (t Target) PropertyKeys() []string {
	keys := make([]string, 0, len(t.properties))
	for k := range t.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
