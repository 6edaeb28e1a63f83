package tracking

import (
	"math"
	"time"

	"fleet-tracking/internal/geo"
	"fleet-tracking/internal/models"
)

// Estimator maps a position onto the planned route and derives progress,
// remaining distance and an arrival estimate from recent speed history.
type Estimator struct {
	// MinSpeedKMH is the representative speed below which no meaningful
	// ETA exists.
	MinSpeedKMH float64
}

// estimate is the result of one recomputation.
type estimate struct {
	projection  geo.Projection
	progressPct float64
	remainingKM float64
	eta         models.ETAEstimate
}

// Estimate projects the latest position onto the route path and computes
// progress, remaining distance and ETA. history is oldest-first and
// includes the latest report. ok is false when the path is degenerate,
// in which case the previous state must be kept.
func (e *Estimator) Estimate(path []geo.Point, totalKM float64, history []models.PositionReport, latest models.PositionReport, now time.Time) (estimate, bool) {
	proj, ok := geo.ProjectOntoPolyline(geo.Point{Lat: latest.Latitude, Lon: latest.Longitude}, path)
	if !ok || totalKM <= 0 {
		return estimate{}, false
	}

	progress := proj.AlongKM / totalKM * 100
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}
	remaining := totalKM - proj.AlongKM
	if remaining < 0 {
		remaining = 0
	}

	res := estimate{
		projection:  proj,
		progressPct: progress,
		remainingKM: remaining,
		eta:         models.ETAEstimate{ShipmentID: latest.ShipmentID},
	}

	if progress >= 100 {
		// Arrived; the estimator still answers rather than erroring.
		res.eta.ArrivalAt = now
		res.eta.Confidence = e.confidence(history, latest, now)
		return res, true
	}

	speed := representativeSpeed(history, latest)
	if speed < e.MinSpeedKMH {
		res.eta.Unknown = true
		res.eta.Confidence = 0
		return res, true
	}

	hours := remaining / speed
	res.eta.ArrivalAt = now.Add(time.Duration(hours * float64(time.Hour)))
	res.eta.Confidence = e.confidence(history, latest, now)
	return res, true
}

// representativeSpeed is a recency-weighted average over the history
// window: the i-th oldest of n reports gets weight i+1. An empty window
// falls back to the latest reading.
func representativeSpeed(history []models.PositionReport, latest models.PositionReport) float64 {
	if len(history) == 0 {
		return latest.SpeedKMH
	}
	var sum, weight float64
	for i, rep := range history {
		w := float64(i + 1)
		sum += rep.SpeedKMH * w
		weight += w
	}
	if weight == 0 {
		return latest.SpeedKMH
	}
	return sum / weight
}

// confidence combines three monotone factors, each in (0,1]: GPS
// accuracy, staleness of the latest report and variance of recent
// speeds. Worse accuracy, staleness or variance never increases the
// result.
func (e *Estimator) confidence(history []models.PositionReport, latest models.PositionReport, now time.Time) float64 {
	// Accuracy: 50 m of reported error halves the factor.
	acc := 1.0 / (1.0 + math.Max(0, latest.AccuracyM)/50.0)

	// Staleness: five minutes since the last report halves the factor.
	age := now.Sub(latest.Timestamp)
	if age < 0 {
		age = 0
	}
	stale := 1.0 / (1.0 + age.Minutes()/5.0)

	// Speed variance: a 20 km/h standard deviation halves the factor.
	variance := speedStddev(history)
	spread := 1.0 / (1.0 + variance/20.0)

	c := acc * stale * spread
	if c > 1 {
		c = 1
	} else if c < 0 {
		c = 0
	}
	return c
}

func speedStddev(history []models.PositionReport) float64 {
	if len(history) < 2 {
		return 0
	}
	var mean float64
	for _, rep := range history {
		mean += rep.SpeedKMH
	}
	mean /= float64(len(history))
	var sq float64
	for _, rep := range history {
		d := rep.SpeedKMH - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(history)))
}
