// pkg/plugin/plugin_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test events, sessions, per-session state and the stale-access cache

package plugin_test

import (
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventString(t *testing.T) {
	assert.Equal(t, "START", plugin.EventStart.String())
	assert.Equal(t, "START_ROW", plugin.EventStartRow.String())
	assert.Equal(t, "END_ROW_SUCCESS", plugin.EventEndRowSuccess.String())
	assert.Equal(t, "END_ROW_FAIL", plugin.EventEndRowFail.String())
	assert.Equal(t, "END", plugin.EventEnd.String())
	assert.Equal(t, "UNKNOWN", plugin.Event(42).String())

	assert.True(t, plugin.EventStart.IsSessionEvent())
	assert.True(t, plugin.EventEnd.IsSessionEvent())
	assert.False(t, plugin.EventStartRow.IsSessionEvent())
}

func TestNewSession(t *testing.T) {
	a := plugin.NewSession("jdoe", zerolog.Nop())
	b := plugin.NewSession("jdoe", zerolog.Nop())
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "jdoe", a.User)
}

func TestSessionState(t *testing.T) {
	state := plugin.NewSessionState(func() map[string]int { return map[string]int{} })

	next := func(session, key string) int {
		var n int
		state.Do(session, func(m *map[string]int) {
			(*m)[key]++
			n = (*m)[key]
		})
		return n
	}

	assert.Equal(t, 1, next("s1", "GMR_1"))
	assert.Equal(t, 2, next("s1", "GMR_1"))
	assert.Equal(t, 1, next("s1", "GMR_2"))
	assert.Equal(t, 1, next("s2", "GMR_1"), "sessions do not share state")
	assert.Equal(t, 2, state.Len())

	m, ok := state.Take("s1")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"GMR_1": 2, "GMR_2": 1}, m)
	_, ok = state.Take("s1")
	assert.False(t, ok)

	state.Reset("s2")
	assert.Equal(t, 0, state.Len())
}

func TestSessionState_Concurrent(t *testing.T) {
	state := plugin.NewSessionState(func() int { return 0 })
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.Do("s", func(n *int) { *n++ })
		}()
	}
	wg.Wait()
	n, _ := state.Take("s")
	assert.Equal(t, 100, n)
}

func TestTimedCache_ClearsOnStaleAccess(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := plugin.NewTimedCache[string, bool](time.Minute)
	cache.SetClock(func() time.Time { return now })

	cache.Add("GMR_1", true)
	now = now.Add(30 * time.Second)
	_, ok := cache.Get("GMR_1")
	assert.True(t, ok)

	now = now.Add(50 * time.Second)
	_, ok = cache.Get("GMR_1")
	assert.True(t, ok, "idle time is measured from the last access, not the insert")

	now = now.Add(61 * time.Second)
	_, ok = cache.Get("GMR_1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestTimedCache_ZeroTTLNeverClears(t *testing.T) {
	now := time.Unix(0, 0)
	cache := plugin.NewTimedCache[string, int](0)
	cache.SetClock(func() time.Time { return now })
	cache.Add("a", 1)
	now = now.Add(24 * time.Hour)
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}
