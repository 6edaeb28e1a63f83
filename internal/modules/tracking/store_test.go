package tracking

import (
	"testing"

	"fleet-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRing(t *testing.T) {
	t.Parallel()

	t.Run("keeps insertion order until full", func(t *testing.T) {
		t.Parallel()
		r := newReportRing(3)
		r.push(models.PositionReport{SpeedKMH: 1})
		r.push(models.PositionReport{SpeedKMH: 2})

		snap := r.snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, 1.0, snap[0].SpeedKMH)
		assert.Equal(t, 2.0, snap[1].SpeedKMH)
	})

	t.Run("discards oldest beyond capacity", func(t *testing.T) {
		t.Parallel()
		r := newReportRing(3)
		for i := 1; i <= 5; i++ {
			r.push(models.PositionReport{SpeedKMH: float64(i)})
		}
		snap := r.snapshot()
		require.Len(t, snap, 3)
		assert.Equal(t, 3.0, snap[0].SpeedKMH)
		assert.Equal(t, 5.0, snap[2].SpeedKMH)
	})

	t.Run("minimum capacity of one", func(t *testing.T) {
		t.Parallel()
		r := newReportRing(0)
		r.push(models.PositionReport{SpeedKMH: 7})
		r.push(models.PositionReport{SpeedKMH: 8})
		snap := r.snapshot()
		require.Len(t, snap, 1)
		assert.Equal(t, 8.0, snap[0].SpeedKMH)
	})
}

func TestStoreLifecycle(t *testing.T) {
	t.Parallel()

	s := NewStore(10)

	_, ok := s.Get("unknown")
	assert.False(t, ok)

	e := s.entry("shp_1")
	assert.True(t, e.state.Active)

	state, ok := s.Get("shp_1")
	require.True(t, ok)
	assert.Equal(t, "shp_1", state.ShipmentID)

	require.True(t, s.Deactivate("shp_1"))
	state, ok = s.Get("shp_1")
	require.True(t, ok)
	assert.False(t, state.Active)

	// Deactivation retains the entry.
	assert.False(t, s.Deactivate("never-seen"))
}

func TestStoreGetETADefaultsToUnknown(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	s.entry("shp_1")

	eta, ok := s.GetETA("shp_1")
	require.True(t, ok)
	assert.True(t, eta.Unknown)
	assert.Zero(t, eta.Confidence)
}
