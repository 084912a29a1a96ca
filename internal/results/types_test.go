package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEcosystem(t *testing.T) {
	for _, eco := range Ecosystems() {
		got, ok := ParseEcosystem(string(eco))
		assert.True(t, ok)
		assert.Equal(t, eco, got)
	}
	_, ok := ParseEcosystem("cargo")
	assert.False(t, ok, "unknown registries must be rejected, not passed through")
}

func TestParseCacheStatus(t *testing.T) {
	assert.Equal(t, CacheHit, ParseCacheStatus("hit"))
	assert.Equal(t, CacheMiss, ParseCacheStatus("miss"))
	assert.Equal(t, CacheUnknown, ParseCacheStatus(""))
	assert.Equal(t, CacheUnknown, ParseCacheStatus("maybe"))
}

func TestWindowContains(t *testing.T) {
	start := time.Date(2026, 1, 9, 16, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	t.Run("bounded", func(t *testing.T) {
		w := Window{Start: start, End: end}
		assert.True(t, w.Contains(start))
		assert.True(t, w.Contains(end))
		assert.True(t, w.Contains(start.Add(30*time.Second)))
		assert.False(t, w.Contains(start.Add(-time.Second)))
		assert.False(t, w.Contains(end.Add(time.Second)))
	})

	t.Run("zero window is unbounded", func(t *testing.T) {
		var w Window
		assert.True(t, w.IsZero())
		assert.True(t, w.Contains(start.AddDate(-10, 0, 0)))
	})

	t.Run("half-open edges", func(t *testing.T) {
		w := Window{Start: start}
		assert.True(t, w.Contains(end.AddDate(1, 0, 0)))
		assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
	})
}

func TestWarningsMerge(t *testing.T) {
	a := Warnings{ParseErrors: 2, FailedFiles: []string{"x"}}
	b := Warnings{ParseErrors: 1, DroppedOutOfWindow: 3, DegradedHosts: []string{"h"}}
	a.Merge(b)

	assert.Equal(t, 3, a.ParseErrors)
	assert.Equal(t, 3, a.DroppedOutOfWindow)
	assert.Equal(t, []string{"x"}, a.FailedFiles)
	assert.Equal(t, []string{"h"}, a.DegradedHosts)
	assert.True(t, a.Any())
	assert.False(t, Warnings{}.Any())
}
