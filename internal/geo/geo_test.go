package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKM(t *testing.T) {
	t.Parallel()

	t.Run("zero distance for identical points", func(t *testing.T) {
		t.Parallel()
		p := Point{Lat: 12.9716, Lon: 77.5946}
		assert.InDelta(t, 0, HaversineKM(p, p), 1e-9)
	})

	t.Run("known city pair", func(t *testing.T) {
		t.Parallel()
		// Bangalore -> Chennai is roughly 290 km great-circle.
		blr := Point{Lat: 12.9716, Lon: 77.5946}
		maa := Point{Lat: 13.0827, Lon: 80.2707}
		d := HaversineKM(blr, maa)
		assert.InDelta(t, 290, d, 10)
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()
		a := Point{Lat: 10, Lon: 20}
		b := Point{Lat: 11, Lon: 21}
		assert.InDelta(t, HaversineKM(a, b), HaversineKM(b, a), 1e-9)
	})
}

func TestPolylineLengthKM(t *testing.T) {
	t.Parallel()

	path := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 0, Lon: 2},
	}
	total := PolylineLengthKM(path)
	direct := HaversineKM(path[0], path[2])
	assert.InDelta(t, direct, total, 0.01)

	assert.Zero(t, PolylineLengthKM(nil))
	assert.Zero(t, PolylineLengthKM(path[:1]))
}

func TestProjectOntoPolyline(t *testing.T) {
	t.Parallel()

	// Straight west-east segment along the equator, 1 degree long.
	straight := []Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}

	t.Run("requires two points", func(t *testing.T) {
		t.Parallel()
		_, ok := ProjectOntoPolyline(Point{}, straight[:1])
		assert.False(t, ok)
	})

	t.Run("midpoint of a straight segment", func(t *testing.T) {
		t.Parallel()
		proj, ok := ProjectOntoPolyline(Point{Lat: 0, Lon: 0.5}, straight)
		require.True(t, ok)
		assert.Equal(t, 0, proj.SegmentIdx)
		assert.InDelta(t, 0.5, proj.SegmentFrac, 1e-6)
		assert.InDelta(t, PolylineLengthKM(straight)/2, proj.AlongKM, 0.01)
		assert.InDelta(t, 0, proj.CrossKM, 0.01)
	})

	t.Run("off-path position reports cross distance", func(t *testing.T) {
		t.Parallel()
		// 0.02 degrees of latitude is ~2.22 km.
		proj, ok := ProjectOntoPolyline(Point{Lat: 0.02, Lon: 0.5}, straight)
		require.True(t, ok)
		assert.InDelta(t, 2.22, proj.CrossKM, 0.05)
		assert.InDelta(t, 0.5, proj.SegmentFrac, 1e-3)
	})

	t.Run("position before the start clamps to origin", func(t *testing.T) {
		t.Parallel()
		proj, ok := ProjectOntoPolyline(Point{Lat: 0, Lon: -0.3}, straight)
		require.True(t, ok)
		assert.Zero(t, proj.SegmentFrac)
		assert.Zero(t, proj.AlongKM)
	})

	t.Run("position past the end clamps to destination", func(t *testing.T) {
		t.Parallel()
		proj, ok := ProjectOntoPolyline(Point{Lat: 0, Lon: 1.4}, straight)
		require.True(t, ok)
		assert.InDelta(t, 1.0, proj.SegmentFrac, 1e-9)
		assert.InDelta(t, PolylineLengthKM(straight), proj.AlongKM, 0.01)
	})

	t.Run("multi-segment path picks the nearest segment", func(t *testing.T) {
		t.Parallel()
		path := []Point{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 1},
			{Lat: 1, Lon: 1},
		}
		proj, ok := ProjectOntoPolyline(Point{Lat: 0.5, Lon: 1.01}, path)
		require.True(t, ok)
		assert.Equal(t, 1, proj.SegmentIdx)
	})
}

func TestPointValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Point{Lat: 90, Lon: -180}.Valid())
	assert.False(t, Point{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lon: 180.5}.Valid())
}
