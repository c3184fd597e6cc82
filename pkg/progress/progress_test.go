// pkg/progress/progress_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test chunk unit rescaling and monotonic percentage reporting

package progress_test

import (
	"math"
	"testing"

	"github.com/arthur-debert/imgrename/pkg/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkUnit(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		wantUnit   int64
		wantChunks int32
	}{
		{"2.5GB fits with megabyte chunks", 2_500_000_000, 1_000_000, 2500},
		{"3TB rescales to gigabyte chunks", 3_000_000_000_000, 1_000_000_000, 3000},
		{"just below the rescale point", 2_147_000_000_000, 1_000_000, 2_147_000},
		{"zero", 0, 1_000_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := progress.ChunkUnit(tt.total, progress.DefaultChunkUnit)
			assert.Equal(t, tt.wantUnit, unit)
			assert.Equal(t, tt.wantChunks, progress.Chunks(tt.total, unit))
		})
	}
}

func TestChunkUnit_RescalesToStayInInt32(t *testing.T) {
	// With a 1000 byte base unit 3TB would need 3e9 chunks
	total := int64(3_000_000_000_000)
	unit := progress.ChunkUnit(total, 1000)
	assert.Equal(t, int64(1_000_000_000), unit)
	assert.LessOrEqual(t, total/unit, int64(math.MaxInt32))

	// Byte-sized base unit
	unit = progress.ChunkUnit(total, 1)
	assert.Equal(t, int64(1_000_000_000), unit)
	assert.LessOrEqual(t, total/unit, int64(math.MaxInt32))

	// 2.5GB in bytes is 2.5e9 chunks, past the int32 range
	unit = progress.ChunkUnit(2_500_000_000, 1)
	assert.Equal(t, int64(1_000_000), unit)

	huge := int64(math.MaxInt64)
	unit = progress.ChunkUnit(huge, progress.DefaultChunkUnit)
	assert.LessOrEqual(t, huge/unit, int64(math.MaxInt32))
}

func TestChunkUnit_DefaultsBaseUnit(t *testing.T) {
	assert.Equal(t, progress.DefaultChunkUnit, progress.ChunkUnit(10, 0))
}

func TestTracker_Monotonic(t *testing.T) {
	var seen []int
	tr := progress.NewTracker(10_000_000, progress.DefaultChunkUnit, func(u progress.Update) {
		seen = append(seen, u.Percent)
	})
	assert.Equal(t, int32(10), tr.TotalChunks())

	tr.Add(500_000, 0, "a")   // below one chunk
	tr.Add(2_500_000, 0, "a") // 3 chunks
	tr.Add(0, 1, "b")
	tr.Add(-5, 1, "b")
	tr.Add(7_000_000, 1, "b")
	tr.Add(1_000_000, 2, "c") // overshoot is clamped
	tr.Finish()
	tr.Finish()

	assert.Equal(t, []int{30, 100}, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 100, tr.Percent())
	assert.Equal(t, int64(11_000_000), tr.Done())
}

func TestTracker_FinishReportsCompletion(t *testing.T) {
	var last progress.Update
	tr := progress.NewTracker(5_000_000, progress.DefaultChunkUnit, func(u progress.Update) { last = u })
	tr.Add(1_000_000, 0, "a")
	require.Equal(t, 20, last.Percent)
	assert.Equal(t, "a", last.RowSource)

	tr.Finish()
	assert.Equal(t, 100, last.Percent)
}

func TestTracker_SmallBatch(t *testing.T) {
	var seen []int
	tr := progress.NewTracker(1000, progress.DefaultChunkUnit, func(u progress.Update) { seen = append(seen, u.Percent) })
	tr.Add(400, 0, "a")
	assert.Empty(t, seen, "no whole chunk and not complete")
	tr.Add(600, 1, "b")
	assert.Equal(t, []int{100}, seen)
}

func TestTracker_NilReport(t *testing.T) {
	tr := progress.NewTracker(1, 0, nil)
	tr.Add(1, 0, "a")
	tr.Finish()
	assert.Equal(t, 100, tr.Percent())
}
