// pkg/task/engine_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: afero in-memory filesystem, real filesystem via t.TempDir
// PURPOSE: Test the rename batch lifecycle, failure isolation, listener notification and progress

package task_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/progress"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/task"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recorder is a listener that records every event it receives
type recorder struct {
	events  []string
	failOn  map[string]error
	onEvent func(plugin.Event, *row.PluginDataRow)
	// ctxErrs holds the context error seen with each event
	ctxErrs map[string]error
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) ProcessEvent(ctx context.Context, _ *plugin.Session, e plugin.Event, pdr *row.PluginDataRow) (*row.PluginDataRow, error) {
	key := e.String()
	if pdr != nil {
		key = fmt.Sprintf("%s:%d", key, pdr.Index())
	}
	r.events = append(r.events, key)
	if r.ctxErrs == nil {
		r.ctxErrs = make(map[string]error)
	}
	r.ctxErrs[key] = ctx.Err()
	if r.onEvent != nil {
		r.onEvent(e, pdr)
	}
	return nil, r.failOn[key]
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Name() string { return "mock" }

func (m *mockValidator) Validate(_ context.Context, _ *plugin.Session, r *row.PluginDataRow) error {
	return m.Called(r.Index()).Error(0)
}

type fixture struct {
	fs      types.FS
	rows    []*row.Row
	session *plugin.Session
}

var sources = []struct {
	path    string
	content string
	line    string
}{
	{"/in/a.tif", "aaaaaaaaaa", "L1"},
	{"/in/b.tif", "bbbbb", "L2"},
	{"/in/c.tif", "ccccccc", "L3"},
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fsys := filesystem.NewMemFS()
	tmpl, err := fields.BuildAll([]fields.Spec{
		{Kind: "verified-text", Name: "Line", Required: true},
		{Kind: "plugin-data", Name: "Rank", Prefix: "_r"},
		{Kind: "file-extension", Name: "Ext"},
	})
	require.NoError(t, err)

	f := &fixture{fs: fsys, session: plugin.NewSession("tester", zerolog.Nop())}
	require.NoError(t, fsys.MkdirAll("/in", 0755))
	for _, s := range sources {
		require.NoError(t, fsys.WriteFile(s.path, []byte(s.content), 0644))
		target := types.NewTarget(s.path, "/in", nil).
			WithFileInfo(time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), int64(len(s.content)))
		r := row.New(target, tmpl)
		require.NoError(t, r.Set("Line", s.line))
		f.rows = append(f.rows, r)
	}
	return f
}

func (f *fixture) exists(path string) bool {
	_, err := f.fs.Stat(path)
	return err == nil
}

func (f *fixture) run(t *testing.T, opts task.Options) *task.Result {
	t.Helper()
	opts.FS = f.fs
	return task.New(opts).Run(context.Background(), f.session, f.rows, "/out")
}

func TestRun_AllRowsSucceed(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	require.NoError(t, res.Err())
	assert.Equal(t, []int{0, 1, 2}, res.Succeeded)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{
		"Renamed /in/a.tif to /out/L1.tif",
		"Renamed /in/b.tif to /out/L2.tif",
		"Renamed /in/c.tif to /out/L3.tif",
	}, res.Summary)
	assert.Equal(t, int64(22), res.Bytes)

	data, err := f.fs.ReadFile("/out/L1.tif")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaa", string(data))
	for _, s := range sources {
		assert.False(t, f.exists(s.path), "source %s removed", s.path)
	}

	assert.Equal(t, []string{
		"START",
		"START_ROW:0", "END_ROW_SUCCESS:0",
		"START_ROW:1", "END_ROW_SUCCESS:1",
		"START_ROW:2", "END_ROW_SUCCESS:2",
		"END",
	}, rec.events)

	entries, err := f.fs.ReadDir("/out")
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary or probe files left behind")
}

func TestRun_ValidatorDataErrorRejectsOnlyThatRow(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	v := &mockValidator{}
	v.On("Validate", 1).Return(errors.New(errors.ErrResourceNotFound, "line L2 is not registered"))
	v.On("Validate", mock.Anything).Return(nil)

	res := f.run(t, task.Options{Chain: &plugin.Chain{
		Validators: []plugin.RowValidator{v},
		Listeners:  []plugin.RowListener{rec},
	}})

	assert.Nil(t, res.Aborted)
	assert.Equal(t, []int{0, 2}, res.Succeeded)
	assert.Equal(t, []int{1}, res.Failed)
	assert.Equal(t, task.StatusRejected, res.Rows[1].Status)
	assert.True(t, errors.IsErrorCode(res.Rows[1].Err, errors.ErrResourceNotFound))
	assert.Equal(t, []string{
		"Renamed /in/a.tif to /out/L1.tif",
		"ERROR: failed to rename /in/b.tif",
		"Renamed /in/c.tif to /out/L3.tif",
	}, res.Summary)

	assert.True(t, f.exists("/in/b.tif"), "rejected source untouched")
	assert.False(t, f.exists("/out/L2.tif"))
	assert.False(t, f.exists("/in/a.tif"))
	assert.False(t, f.exists("/in/c.tif"))
	assert.Equal(t, []int{1}, res.Retry())

	assert.Equal(t, []string{
		"START",
		"START_ROW:0", "END_ROW_SUCCESS:0",
		"END_ROW_FAIL:1",
		"START_ROW:2", "END_ROW_SUCCESS:2",
		"END",
	}, rec.events)
	v.AssertNumberOfCalls(t, "Validate", 3)
}

func TestRun_ValidatorSystemErrorAbortsBeforeAnyCopy(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	v := &mockValidator{}
	v.On("Validate", 0).Return(nil)
	v.On("Validate", 1).Return(errors.New(errors.ErrExternalSystem, "registry unreachable"))

	res := f.run(t, task.Options{Chain: &plugin.Chain{
		Validators: []plugin.RowValidator{v},
		Listeners:  []plugin.RowListener{rec},
	}})

	require.Error(t, res.Aborted)
	assert.True(t, errors.IsSystemError(res.Aborted))
	assert.Equal(t, "mock", errors.GetErrorDetails(res.Aborted)["plugin"])
	assert.Empty(t, res.Succeeded)
	assert.Equal(t, []int{0, 1, 2}, res.Failed)
	for _, s := range sources {
		assert.True(t, f.exists(s.path))
	}
	assert.Equal(t, []string{"START", "END"}, rec.events)
	v.AssertNotCalled(t, "Validate", 2)
}

func TestRun_SessionStartFailureAbortsBatch(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{failOn: map[string]error{"START": fmt.Errorf("db down")}}
	v := &mockValidator{}

	res := f.run(t, task.Options{Chain: &plugin.Chain{
		Validators: []plugin.RowValidator{v},
		Listeners:  []plugin.RowListener{rec},
	}})

	assert.True(t, errors.IsErrorCode(res.Aborted, errors.ErrSessionStart))
	assert.Equal(t, []int{0, 1, 2}, res.Failed)
	assert.Equal(t, []string{"START", "END"}, rec.events)
	assert.False(t, f.exists("/out"), "output directory not even created")
	v.AssertNotCalled(t, "Validate", mock.Anything)
}

func TestRun_OutputDirectoryUnusable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.WriteFile("/out", []byte("file"), 0644))
	v := &mockValidator{}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Validators: []plugin.RowValidator{v}}})

	assert.True(t, errors.IsErrorCode(res.Aborted, errors.ErrDirCreate))
	assert.Equal(t, []int{0, 1, 2}, res.Failed)
	for _, s := range sources {
		assert.True(t, f.exists(s.path))
	}
	v.AssertNotCalled(t, "Validate", mock.Anything)
}

func TestRun_OutputParentNotUsableOnDisk(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.MkdirAll(in, 0755))
	src := filepath.Join(in, "a.tif")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	tmpl, err := fields.BuildAll([]fields.Spec{{Name: "Line"}, {Kind: "file-extension", Name: "Ext"}})
	require.NoError(t, err)
	r := row.New(types.NewTarget(src, in, nil).WithFileInfo(time.Now(), 4), tmpl)
	require.NoError(t, r.Set("Line", "L1"))

	dir := filepath.Join(blocker, "out")
	res := task.New(task.Options{FS: filesystem.NewOS()}).
		Run(context.Background(), plugin.NewSession("tester", zerolog.Nop()), []*row.Row{r}, dir)

	require.Error(t, res.Aborted)
	assert.True(t, errors.IsErrorCode(res.Aborted, errors.ErrDirCreate))
	assert.Equal(t, []int{0}, res.Failed)
	_, statErr := os.Stat(filepath.Join(dir, "L1.tif"))
	assert.Error(t, statErr, "no partial file at the destination")
	_, statErr = os.Stat(src)
	assert.NoError(t, statErr)
}

func TestRun_FieldVerificationRejectsRow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rows[2].Set("Line", ""))

	res := f.run(t, task.Options{})

	assert.Equal(t, []int{0, 1}, res.Succeeded)
	assert.Equal(t, []int{2}, res.Failed)
	assert.True(t, errors.IsErrorCode(res.Rows[2].Err, errors.ErrFieldInvalid))
	assert.Contains(t, res.Rows[2].Err.Error(), "Line is a required field")
	assert.True(t, f.exists("/in/c.tif"))
}

func TestRun_AbortOnInvalidRow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rows[1].Set("Line", ""))

	res := f.run(t, task.Options{AbortOnInvalidRow: true})

	require.Error(t, res.Aborted)
	assert.True(t, errors.IsErrorCode(res.Aborted, errors.ErrRowRejected))
	assert.Empty(t, res.Succeeded)
	assert.Equal(t, task.StatusRejected, res.Rows[1].Status)
	assert.Equal(t, task.StatusFailed, res.Rows[0].Status)
	assert.True(t, f.exists("/in/a.tif"))
}

func TestRun_StartRowFailureFailsOnlyThatRow(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{failOn: map[string]error{"START_ROW:0": errors.New(errors.ErrRegistryRecord, "duplicate record")}}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	assert.Equal(t, []int{0}, res.Failed)
	assert.Equal(t, []int{1, 2}, res.Succeeded)
	assert.True(t, errors.IsErrorCode(res.Rows[0].Err, errors.ErrRegistryRecord))
	assert.True(t, f.exists("/in/a.tif"))
	assert.Equal(t, "START_ROW:0", rec.events[1])
	assert.Equal(t, "END_ROW_FAIL:0", rec.events[2])
}

func TestRun_EndRowSuccessErrorsAreSwallowed(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{failOn: map[string]error{"END_ROW_SUCCESS:1": fmt.Errorf("sidecar write failed")}}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	require.NoError(t, res.Err())
	assert.Equal(t, task.StatusRenamed, res.Rows[1].Status)
	assert.False(t, f.exists("/in/b.tif"), "source still removed after a failed notification")
	assert.NotContains(t, rec.events, "END_ROW_FAIL:1")
}

func TestRun_EndRowFailErrorsAreAttached(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/out", 0755))
	require.NoError(t, f.fs.WriteFile("/out/L1.tif", []byte("existing"), 0644))
	rec := &recorder{failOn: map[string]error{"END_ROW_FAIL:0": fmt.Errorf("rollback failed")}}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	require.Equal(t, []int{0}, res.Failed)
	assert.True(t, errors.IsErrorCode(res.Rows[0].Err, errors.ErrDestinationExists))
	assert.True(t, errors.IsDataError(res.Rows[0].Err))
	require.Len(t, res.Rows[0].CleanupErrs, 1)
	assert.EqualError(t, res.Rows[0].CleanupErrs[0], "rollback failed")

	data, _ := f.fs.ReadFile("/out/L1.tif")
	assert.Equal(t, "existing", string(data), "existing destination untouched")
	assert.True(t, f.exists("/in/a.tif"))
}

func TestRun_OverwriteAndKeepSource(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/out", 0755))
	require.NoError(t, f.fs.WriteFile("/out/L1.tif", []byte("existing"), 0644))

	res := f.run(t, task.Options{Overwrite: true, KeepSource: true})

	require.NoError(t, res.Err())
	data, _ := f.fs.ReadFile("/out/L1.tif")
	assert.Equal(t, "aaaaaaaaaa", string(data))
	for _, s := range sources {
		assert.True(t, f.exists(s.path))
	}
}

func TestRun_DuplicateDestinationInBatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rows[1].Set("Line", "L1"))

	res := f.run(t, task.Options{Overwrite: true})

	assert.Equal(t, []int{0, 2}, res.Succeeded)
	assert.Equal(t, []int{1}, res.Failed)
	assert.True(t, errors.IsErrorCode(res.Rows[1].Err, errors.ErrDestinationExists))
	assert.Contains(t, res.Rows[1].Err.Error(), "/in/a.tif")

	data, err := f.fs.ReadFile("/out/L1.tif")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaa", string(data), "first row's copy is not overwritten")
	assert.True(t, f.exists("/in/b.tif"), "source of the refused row is kept")
}

func TestRun_DuplicateDestinationFreedByFailedCopy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rows[1].Set("Line", "L1"))
	require.NoError(t, f.fs.Remove("/in/a.tif"))

	res := f.run(t, task.Options{})

	assert.Equal(t, []int{0}, res.Failed)
	assert.Equal(t, []int{1, 2}, res.Succeeded)
	data, err := f.fs.ReadFile("/out/L1.tif")
	require.NoError(t, err)
	assert.Equal(t, "bbbbb", string(data))
}

func TestRun_ListenerSetsPluginDataUsedInName(t *testing.T) {
	f := newFixture(t)
	rank := 0
	rec := &recorder{onEvent: func(e plugin.Event, pdr *row.PluginDataRow) {
		if e == plugin.EventStartRow {
			rank++
			require.NoError(t, pdr.SetPluginDataValue("Rank", fmt.Sprint(rank)))
		}
		if e == plugin.EventEndRowSuccess {
			assert.True(t, strings.HasSuffix(pdr.Destination(), fmt.Sprintf("_r%d.tif", rank)))
		}
	}}

	res := f.run(t, task.Options{Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	require.NoError(t, res.Err())
	assert.Equal(t, "/out/L1_r1.tif", res.Rows[0].Destination)
	assert.Equal(t, "/out/L3_r3.tif", res.Rows[2].Destination)
}

func TestRun_CopyFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.Remove("/in/b.tif"))

	res := f.run(t, task.Options{})

	assert.Equal(t, []int{1}, res.Failed)
	assert.True(t, errors.IsErrorCode(res.Rows[1].Err, errors.ErrFileNotFound))
	assert.True(t, errors.IsSystemError(res.Rows[1].Err))
	assert.Equal(t, []int{0, 2}, res.Succeeded)
	entries, err := f.fs.ReadDir("/out")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_CancellationBetweenRows(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onEvent: func(e plugin.Event, pdr *row.PluginDataRow) {
		if e == plugin.EventStartRow && pdr.Index() == 0 {
			cancel()
		}
	}}

	res := task.New(task.Options{FS: f.fs, Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}}).
		Run(ctx, f.session, f.rows, "/out")

	assert.True(t, res.Cancelled)
	assert.True(t, errors.IsErrorCode(res.Err(), errors.ErrCancelled))
	assert.Equal(t, []int{0}, res.Succeeded, "row in flight completes")
	assert.False(t, f.exists("/in/a.tif"), "completed row stays committed")
	assert.True(t, f.exists("/in/b.tif"))
	assert.Equal(t, task.StatusPending, res.Rows[1].Status)
	assert.Equal(t, []int{1, 2}, res.Retry())
	assert.Equal(t, "END", rec.events[len(rec.events)-1])
}

func TestRun_CancelledRowStillNotifiesListeners(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onEvent: func(e plugin.Event, pdr *row.PluginDataRow) {
		if e == plugin.EventStartRow && pdr.Index() == 0 {
			cancel()
		}
	}}

	res := task.New(task.Options{FS: f.fs, Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}}).
		Run(ctx, f.session, f.rows, "/out")

	require.True(t, res.Cancelled)
	assert.Equal(t, []int{0}, res.Succeeded)
	assert.Equal(t, []string{"START", "START_ROW:0", "END_ROW_SUCCESS:0", "END"}, rec.events)
	assert.NoError(t, rec.ctxErrs["END_ROW_SUCCESS:0"], "row past START_ROW commits with a live context")
	assert.NoError(t, rec.ctxErrs["END"])
}

func TestRun_CancelledRowFailureNotifiesListeners(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/out", 0755))
	require.NoError(t, f.fs.WriteFile("/out/L1.tif", []byte("existing"), 0644))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onEvent: func(e plugin.Event, pdr *row.PluginDataRow) {
		if e == plugin.EventStartRow && pdr.Index() == 0 {
			cancel()
		}
	}}

	res := task.New(task.Options{FS: f.fs, Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}}).
		Run(ctx, f.session, f.rows, "/out")

	require.True(t, res.Cancelled)
	assert.Equal(t, []int{0}, res.Failed)
	assert.Contains(t, rec.events, "END_ROW_FAIL:0")
	assert.NoError(t, rec.ctxErrs["END_ROW_FAIL:0"], "release runs with a live context")
}

func TestRun_ProgressIsMonotonicAndCountsFailedRows(t *testing.T) {
	f := newFixture(t)
	v := &mockValidator{}
	v.On("Validate", 0).Return(errors.New(errors.ErrResourceNotFound, "nope"))
	v.On("Validate", mock.Anything).Return(nil)

	var seen []int
	res := f.run(t, task.Options{
		Chain:     &plugin.Chain{Validators: []plugin.RowValidator{v}},
		ChunkUnit: 1,
		Progress:  func(u progress.Update) { seen = append(seen, u.Percent) },
	})

	require.Equal(t, []int{0}, res.Failed)
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.Equal(t, 45, seen[0], "rejected first row contributes its 10 of 22 bytes")
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	require.NoError(t, f.rows[1].Set("Line", ""))

	res := f.run(t, task.Options{DryRun: true, Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}})

	assert.True(t, res.DryRun)
	assert.Equal(t, "Would rename /in/a.tif to /out/L1.tif", res.Summary[0])
	assert.Equal(t, "ERROR: failed to rename /in/b.tif", res.Summary[1])
	assert.Equal(t, task.StatusPlanned, res.Rows[2].Status)
	assert.Empty(t, rec.events)
	assert.False(t, f.exists("/out"))
	for _, s := range sources {
		assert.True(t, f.exists(s.path))
	}
}

func TestRun_DryRunRefusesDuplicateDestination(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rows[2].Set("Line", "L1"))

	res := f.run(t, task.Options{DryRun: true, Overwrite: true})

	assert.Equal(t, []int{0, 1}, res.Succeeded)
	assert.Equal(t, []int{2}, res.Failed)
	assert.Equal(t, task.StatusFailed, res.Rows[2].Status)
	assert.True(t, errors.IsErrorCode(res.Rows[2].Err, errors.ErrDestinationExists))
	assert.Equal(t, "ERROR: failed to rename /in/c.tif", res.Summary[2])
}

func TestRun_EmptyBatch(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	res := task.New(task.Options{FS: f.fs, Chain: &plugin.Chain{Listeners: []plugin.RowListener{rec}}}).
		Run(context.Background(), f.session, nil, "/out")
	require.NoError(t, res.Err())
	assert.Equal(t, []string{"START", "END"}, rec.events)
}
