package ball

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenBenjamin97/tactical-map/pkg/geometry"
)

func pt(x, y float64) *geometry.Point {
	p := geometry.Pt(x, y)
	return &p
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("appends to empty history", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(10)
		require.NoError(t, Update(h, pt(100.7, 100.2), pt(10.9, 20.1), 50, 10))
		assert.Equal(t, []image.Point{{100, 100}}, h.Frame)
		assert.Equal(t, []image.Point{{10, 20}}, h.Plane)
	})

	t.Run("missing position leaves history unchanged", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(10)
		require.NoError(t, Update(h, pt(100, 100), pt(10, 10), 50, 10))
		require.NoError(t, Update(h, nil, pt(11, 11), 50, 10))
		require.NoError(t, Update(h, pt(101, 101), nil, 50, 10))
		assert.Equal(t, 1, h.Len())
	})

	t.Run("continuity appends", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(10)
		require.NoError(t, Update(h, pt(100, 100), pt(10, 10), 50, 10))
		require.NoError(t, Update(h, pt(110, 102), pt(11, 10), 50, 10))
		assert.Equal(t, []image.Point{{100, 100}, {110, 102}}, h.Frame)
		assert.Equal(t, []image.Point{{10, 10}, {11, 10}}, h.Plane)
	})

	t.Run("jump restarts trajectory", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(10)
		require.NoError(t, Update(h, pt(100, 100), pt(10, 10), 50, 10))
		require.NoError(t, Update(h, pt(110, 102), pt(11, 10), 50, 10))
		require.NoError(t, Update(h, pt(1000, 1000), pt(90, 60), 50, 10))
		assert.Equal(t, []image.Point{{1000, 1000}}, h.Frame)
		assert.Equal(t, []image.Point{{90, 60}}, h.Plane)
	})

	t.Run("distance equal to threshold restarts", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(10)
		require.NoError(t, Update(h, pt(0, 0), pt(0, 0), 50, 10))
		require.NoError(t, Update(h, pt(30, 40), pt(1, 1), 50, 10))
		assert.Equal(t, []image.Point{{30, 40}}, h.Frame)
	})

	t.Run("keeps the most recent samples", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(5)
		for i := 0; i < 12; i++ {
			x := float64(i * 10)
			require.NoError(t, Update(h, pt(x, 0), pt(x/10, 0), 50, 5))
			assert.LessOrEqual(t, h.Len(), 5)
		}
		assert.Equal(t, []image.Point{{70, 0}, {80, 0}, {90, 0}, {100, 0}, {110, 0}}, h.Frame)
		assert.Equal(t, []image.Point{{7, 0}, {8, 0}, {9, 0}, {10, 0}, {11, 0}}, h.Plane)
	})

	t.Run("shrinking max length trims without a new sample", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(5)
		for i := 0; i < 5; i++ {
			require.NoError(t, Update(h, pt(float64(i), 0), pt(0, 0), 50, 5))
		}
		require.NoError(t, Update(h, nil, nil, 50, 2))
		assert.Equal(t, []image.Point{{3, 0}, {4, 0}}, h.Frame)
		assert.Equal(t, 2, h.MaxLength)
	})

	t.Run("misaligned history is rejected", func(t *testing.T) {
		t.Parallel()
		h := &History{Frame: []image.Point{{1, 1}}, MaxLength: 5}
		err := Update(h, pt(2, 2), pt(2, 2), 50, 5)
		assert.ErrorIs(t, err, ErrMisaligned)
		assert.Equal(t, 1, h.Len())
	})
}

func TestTracker_LossPolicy(t *testing.T) {
	t.Parallel()

	tr := NewTracker(Config{DistanceThreshold: 50, MaxLength: 10, NoBallThreshold: 2})

	observe := func(p *geometry.Point) {
		tr.BeginFrame()
		tr.Seen(p != nil)
		require.NoError(t, tr.Observe(p, p))
	}

	observe(pt(100, 100))
	observe(pt(105, 100))
	require.Equal(t, 2, tr.History().Len())

	//two missing frames stay within the threshold
	observe(nil)
	observe(nil)
	tr.BeginFrame()
	assert.Equal(t, 2, tr.History().Len())

	//the third one exceeds it, the next frame starts from scratch
	tr.Seen(false)
	assert.Equal(t, 3, tr.Missed())
	tr.BeginFrame()
	assert.Equal(t, 0, tr.History().Len())

	tr.Seen(true)
	require.NoError(t, tr.Observe(pt(500, 500), pt(50, 50)))
	assert.Equal(t, 0, tr.Missed())
	assert.Equal(t, []image.Point{{500, 500}}, tr.History().Frame)
}

func TestLossCounter(t *testing.T) {
	t.Parallel()

	c := LossCounter{Threshold: 1}
	assert.False(t, c.Expired())
	c.Observe(false)
	assert.False(t, c.Expired())
	c.Observe(false)
	assert.True(t, c.Expired())
	c.Observe(true)
	assert.False(t, c.Expired())
	assert.Equal(t, 0, c.Missed())
}
