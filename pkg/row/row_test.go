// pkg/row/row_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test row construction, lookup, cloning, value copying and the plug-in view

package row_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/tokens"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template(t *testing.T) []fields.DataField {
	t.Helper()
	no := false
	fs, err := fields.BuildAll([]fields.Spec{
		{Kind: "verified-text", Name: "Line", Suffix: "_"},
		{Kind: "plugin-data", Name: "Rank", Prefix: "R"},
		{Kind: "static", Name: "Operator", MarkForTask: &no},
		{Kind: "static", Name: "Note", Copyable: &no},
		{Kind: "group", Name: "Slide", Children: []fields.Spec{{Name: "Tray"}, {Kind: "file-name", Name: "Stem"}}},
		{Kind: "file-extension", Name: "Ext"},
	})
	require.NoError(t, err)
	return fs
}

func target(path string) types.Target {
	return types.NewTarget(path, "/data", nil).WithFileInfo(time.Unix(0, 0), 10)
}

func TestNew_InitialisesFromTarget(t *testing.T) {
	tmpl := template(t)
	r := row.New(target("/data/run1/a.tif"), tmpl)

	assert.Equal(t, 6, r.Len())
	assert.Equal(t, ".tif", r.CoreValue("Ext"))
	assert.Equal(t, "a", r.CoreValue("Stem"), "group children are addressable")
	assert.Equal(t, "", r.CoreValue("Missing"))

	ext, _ := tmpl[5].(*fields.FileExtension)
	require.NotNil(t, ext)
	assert.Equal(t, "", ext.CoreValue(), "template fields are not initialised")
}

func TestRow_IsTokenResolver(t *testing.T) {
	r := row.New(target("/data/a.tif"), template(t))
	require.NoError(t, r.Set("Line", "GMR_1"))

	tmpl := tokens.MustCompile("${Line}-${'x'Missing}${Ext}")
	assert.Equal(t, "GMR_1-.tif", tmpl.Derive(r))
}

func TestSet_UnknownField(t *testing.T) {
	r := row.New(target("/data/a.tif"), template(t))
	err := r.Set("Nope", "x")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFieldNotFound))
}

func TestClone_Independent(t *testing.T) {
	r := row.New(target("/data/a.tif"), template(t))
	require.NoError(t, r.Set("Line", "L1"))

	c := r.Clone()
	require.NoError(t, c.Set("Line", "L2"))

	assert.Equal(t, "L1", r.CoreValue("Line"))
	assert.Equal(t, "L2", c.CoreValue("Line"))
	assert.Equal(t, ".tif", c.CoreValue("Ext"))
}

func TestCloneFor_RederivesTargetValues(t *testing.T) {
	r := row.New(target("/data/a.tif"), template(t))
	require.NoError(t, r.Set("Line", "L1"))
	require.NoError(t, r.Set("Tray", "T9"))

	c := r.CloneFor(target("/data/b.lsm"))
	assert.Equal(t, "L1", c.CoreValue("Line"))
	assert.Equal(t, "T9", c.CoreValue("Tray"))
	assert.Equal(t, "b", c.CoreValue("Stem"))
	assert.Equal(t, ".lsm", c.CoreValue("Ext"))
	assert.Equal(t, "/data/b.lsm", c.Target().Path())
}

func TestCopyValuesFrom_HonoursCopyable(t *testing.T) {
	src := row.New(target("/data/a.tif"), template(t))
	require.NoError(t, src.Set("Line", "L1"))
	require.NoError(t, src.Set("Note", "keep out"))
	require.NoError(t, src.Set("Tray", "T1"))

	dst := row.New(target("/data/b.tif"), template(t))
	require.NoError(t, dst.CopyValuesFrom(src))

	assert.Equal(t, "L1", dst.CoreValue("Line"))
	assert.Equal(t, "", dst.CoreValue("Note"), "non-copyable field untouched")
	assert.Equal(t, "T1", dst.CoreValue("Tray"), "group children are copied")
	assert.Equal(t, "b", dst.CoreValue("Stem"), "derived values untouched")
}

func TestVerify_CollectsMessages(t *testing.T) {
	fs, err := fields.BuildAll([]fields.Spec{
		{Kind: "verified-integer", Name: "Age", Max: "10"},
		{Kind: "valid-value", Name: "Sex", Values: []string{"m", "f"}, Required: true},
	})
	require.NoError(t, err)
	r := row.New(target("/data/a.tif"), fs)
	require.NoError(t, r.Set("Age", "11"))

	problems := r.Verify()
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "maximum 10")
	assert.Contains(t, problems[1], "required")

	require.NoError(t, r.Set("Age", "10"))
	require.NoError(t, r.Set("Sex", "f"))
	assert.Empty(t, r.Verify())
}

func TestPluginDataRow(t *testing.T) {
	r := row.New(target("/data/run1/a.tif"), template(t))
	require.NoError(t, r.Set("Line", "L1"))
	require.NoError(t, r.Set("Operator", "jd"))
	p := row.NewPluginDataRow(r, 3)

	assert.Equal(t, 3, p.Index())
	assert.Equal(t, "/data/run1/a.tif", p.TargetFile())
	assert.Equal(t, "run1/a.tif", p.RelativePath())
	assert.Equal(t, "L1", p.CoreValue("Line"))

	t.Run("unmarked fields are hidden", func(t *testing.T) {
		assert.Equal(t, "", p.CoreValue("Operator"))
		_, err := p.DataField("Operator")
		assert.True(t, errors.IsErrorCode(err, errors.ErrFieldNotFound))
		assert.NotContains(t, p.Values(), "Operator")
		for _, f := range p.TaskFields() {
			assert.NotEqual(t, "Operator", f.DisplayName())
		}
	})

	t.Run("plug-in data round trip", func(t *testing.T) {
		require.NoError(t, p.SetPluginDataValue("Rank", "4"))
		v, err := p.PluginDataValue("Rank")
		require.NoError(t, err)
		assert.Equal(t, "4", v)
		assert.Equal(t, "R4", r.Field(1).FileNameValue())
	})

	t.Run("wrong field type", func(t *testing.T) {
		err := p.SetPluginDataValue("Line", "x")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFieldType))
		assert.Equal(t, "L1", r.CoreValue("Line"))

		_, err = p.PluginDataValue("Line")
		assert.True(t, errors.IsErrorCode(err, errors.ErrFieldType))
	})

	t.Run("destination", func(t *testing.T) {
		assert.Equal(t, "", p.Destination())
		p.SetDestination("/out/L1_R4.tif")
		assert.Equal(t, "/out/L1_R4.tif", p.Destination())
	})
}
