package testutil

import (
	"testing"

	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/scan"
)

// Template builds a field template or fails the test
func Template(t *testing.T, specs ...fields.Spec) []fields.DataField {
	t.Helper()
	tmpl, err := fields.BuildAll(specs)
	if err != nil {
		t.Fatalf("Failed to build fields: %v", err)
	}
	return tmpl
}

// Rows discovers the files matching include under dir (relative to the
// root) and builds one row per file
func (env *TestEnvironment) Rows(dir string, template []fields.DataField, include ...string) []*row.Row {
	env.t.Helper()
	if len(include) == 0 {
		include = []string{"*.tif"}
	}
	targets, err := scan.Discover(env.FS, env.Path(dir), scan.Config{Include: include})
	if err != nil {
		env.t.Fatalf("Failed to scan %s: %v", dir, err)
	}
	rows := make([]*row.Row, len(targets))
	for i, target := range targets {
		rows[i] = row.New(target, template)
	}
	return rows
}
