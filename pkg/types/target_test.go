// pkg/types/target_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test target path helpers and property bag isolation

package types_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestTarget_Paths(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		root        string
		wantName    string
		wantRelDir  string
		wantRelPath string
	}{
		{
			name:        "file_at_root",
			path:        "/data/scans/img_001.tif",
			root:        "/data/scans",
			wantName:    "img_001.tif",
			wantRelDir:  "",
			wantRelPath: "img_001.tif",
		},
		{
			name:        "nested_file",
			path:        "/data/scans/slide3/region2/img_001.lsm",
			root:        "/data/scans",
			wantName:    "img_001.lsm",
			wantRelDir:  "slide3/region2",
			wantRelPath: "slide3/region2/img_001.lsm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := types.NewTarget(tt.path, tt.root, nil)
			assert.Equal(t, tt.wantName, target.Name())
			assert.Equal(t, tt.wantRelDir, target.RelativeDir())
			assert.Equal(t, tt.wantRelPath, target.RelativePath())
			assert.False(t, target.IsZero())
		})
	}
}

func TestTarget_PropertiesAreCopied(t *testing.T) {
	props := map[string]string{"line": "GMR_10A01", "age": "3"}
	target := types.NewTarget("/a/b.tif", "/a", props)

	props["line"] = "changed"

	v, ok := target.Property("line")
	assert.True(t, ok)
	assert.Equal(t, "GMR_10A01", v)
	assert.Equal(t, []string{"age", "line"}, target.PropertyKeys())

	_, ok = target.Property("missing")
	assert.False(t, ok)
}

func TestTarget_Zero(t *testing.T) {
	var target types.Target
	assert.True(t, target.IsZero())
}

func TestTarget_WithFileInfo(t *testing.T) {
	base := types.NewTarget("/a/b.tif", "/a", nil)
	when := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

	withInfo := base.WithFileInfo(when, 4096)

	assert.True(t, base.ModTime().IsZero(), "original is unchanged")
	assert.Equal(t, int64(0), base.Size())
	assert.Equal(t, when, withInfo.ModTime())
	assert.Equal(t, int64(4096), withInfo.Size())
	assert.Equal(t, base.Path(), withInfo.Path())
}
