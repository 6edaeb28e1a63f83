package tracking

import (
	"testing"
	"time"

	"fleet-tracking/internal/geo"
	"fleet-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var equatorPath = []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}

func report(lat, lon, speed float64, ts time.Time) models.PositionReport {
	return models.PositionReport{
		ShipmentID: "shp_1",
		Latitude:   lat,
		Longitude:  lon,
		SpeedKMH:   speed,
		AccuracyM:  10,
		Timestamp:  ts,
	}
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	est := &Estimator{MinSpeedKMH: 1}
	totalKM := geo.PolylineLengthKM(equatorPath)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("midpoint of a straight route is 50 percent", func(t *testing.T) {
		t.Parallel()
		latest := report(0, 0.5, 40, now)
		res, ok := est.Estimate(equatorPath, totalKM, []models.PositionReport{latest}, latest, now)
		require.True(t, ok)
		assert.InDelta(t, 50, res.progressPct, 0.1)
		assert.InDelta(t, totalKM/2, res.remainingKM, 0.1)
		assert.False(t, res.eta.Unknown)
	})

	t.Run("eta is distance over representative speed", func(t *testing.T) {
		t.Parallel()
		latest := report(0, 0.5, 50, now)
		res, ok := est.Estimate(equatorPath, totalKM, []models.PositionReport{latest}, latest, now)
		require.True(t, ok)
		wantHours := res.remainingKM / 50
		assert.InDelta(t, wantHours, res.eta.ArrivalAt.Sub(now).Hours(), 0.01)
		assert.Greater(t, res.eta.Confidence, 0.0)
	})

	t.Run("zero speed across history yields unknown, not infinity", func(t *testing.T) {
		t.Parallel()
		history := []models.PositionReport{
			report(0, 0.4, 0, now.Add(-2*time.Minute)),
			report(0, 0.4, 0, now.Add(-time.Minute)),
			report(0, 0.4, 0, now),
		}
		res, ok := est.Estimate(equatorPath, totalKM, history, history[2], now)
		require.True(t, ok)
		assert.True(t, res.eta.Unknown)
		assert.Zero(t, res.eta.Confidence)
		assert.True(t, res.eta.ArrivalAt.IsZero())
	})

	t.Run("arrived shipment reports eta now", func(t *testing.T) {
		t.Parallel()
		latest := report(0, 1, 0, now)
		res, ok := est.Estimate(equatorPath, totalKM, []models.PositionReport{latest}, latest, now)
		require.True(t, ok)
		assert.InDelta(t, 100, res.progressPct, 0.01)
		assert.Zero(t, res.remainingKM)
		assert.Equal(t, now, res.eta.ArrivalAt)
		assert.False(t, res.eta.Unknown)
	})

	t.Run("progress clamps past the destination", func(t *testing.T) {
		t.Parallel()
		latest := report(0, 1.2, 60, now)
		res, ok := est.Estimate(equatorPath, totalKM, []models.PositionReport{latest}, latest, now)
		require.True(t, ok)
		assert.InDelta(t, 100, res.progressPct, 0.01)
		assert.Zero(t, res.remainingKM)
	})

	t.Run("degenerate path is rejected", func(t *testing.T) {
		t.Parallel()
		latest := report(0, 0.5, 40, now)
		_, ok := est.Estimate(equatorPath[:1], totalKM, nil, latest, now)
		assert.False(t, ok)
		_, ok = est.Estimate(equatorPath, 0, nil, latest, now)
		assert.False(t, ok)
	})
}

func TestRepresentativeSpeed(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("empty history falls back to latest", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 42.0, representativeSpeed(nil, report(0, 0, 42, now)))
	})

	t.Run("recent reports weigh more", func(t *testing.T) {
		t.Parallel()
		history := []models.PositionReport{
			report(0, 0, 10, now.Add(-2*time.Minute)),
			report(0, 0, 90, now),
		}
		got := representativeSpeed(history, history[1])
		// (10*1 + 90*2) / 3 ≈ 63.3, closer to the recent reading than a
		// plain mean would be.
		assert.InDelta(t, 63.3, got, 0.1)
		assert.Greater(t, got, 50.0)
	})
}

func TestConfidenceMonotonicity(t *testing.T) {
	t.Parallel()

	est := &Estimator{MinSpeedKMH: 1}
	now := time.Now()

	base := report(0, 0.5, 40, now)
	history := []models.PositionReport{base}

	t.Run("worse accuracy never increases confidence", func(t *testing.T) {
		t.Parallel()
		good := est.confidence(history, base, now)
		bad := base
		bad.AccuracyM = 400
		assert.LessOrEqual(t, est.confidence(history, bad, now), good)
	})

	t.Run("staler updates never increase confidence", func(t *testing.T) {
		t.Parallel()
		fresh := est.confidence(history, base, now)
		stale := est.confidence(history, base, now.Add(30*time.Minute))
		assert.LessOrEqual(t, stale, fresh)
	})

	t.Run("erratic speed never increases confidence", func(t *testing.T) {
		t.Parallel()
		steady := []models.PositionReport{
			report(0, 0.4, 40, now.Add(-2*time.Minute)),
			report(0, 0.45, 40, now.Add(-time.Minute)),
			report(0, 0.5, 40, now),
		}
		erratic := []models.PositionReport{
			report(0, 0.4, 5, now.Add(-2*time.Minute)),
			report(0, 0.45, 120, now.Add(-time.Minute)),
			report(0, 0.5, 40, now),
		}
		assert.LessOrEqual(t,
			est.confidence(erratic, erratic[2], now),
			est.confidence(steady, steady[2], now))
	})

	t.Run("bounded in unit interval", func(t *testing.T) {
		t.Parallel()
		awful := base
		awful.AccuracyM = 1e6
		c := est.confidence(history, awful, now.Add(24*time.Hour))
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	})
}
