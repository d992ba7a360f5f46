package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
)

type steppingClock struct{ now time.Time }

func (c *steppingClock) Now() time.Time { return c.now }

func TestPreviewRegistry(t *testing.T) {
	clk := &steppingClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	reg := newPreviewRegistry(10*time.Minute, clk, &id.Sequence{Prefix: "imp"})
	pv := &importer.Preview{Source: "a.csv"}

	key := reg.put(pv, "u1")
	assert.Equal(t, "imp-0001", key)

	_, ok := reg.take(key, "u2")
	assert.False(t, ok, "other users cannot take a preview")

	got, ok := reg.take(key, "u1")
	require.True(t, ok)
	assert.Same(t, pv, got)

	_, ok = reg.take(key, "u1")
	assert.False(t, ok, "take removes the preview")
}

func TestPreviewRegistryExpiry(t *testing.T) {
	clk := &steppingClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	reg := newPreviewRegistry(10*time.Minute, clk, &id.Sequence{Prefix: "imp"})

	first := reg.put(&importer.Preview{}, "u1")
	clk.now = clk.now.Add(5 * time.Minute)
	reg.put(&importer.Preview{}, "u1")
	assert.Equal(t, 2, reg.len())

	clk.now = clk.now.Add(5 * time.Minute)
	assert.Equal(t, 1, reg.len())
	_, ok := reg.take(first, "u1")
	assert.False(t, ok)
}
