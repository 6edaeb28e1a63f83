package tracking

import (
	"time"

	"fleet-tracking/internal/models"

	"github.com/google/uuid"
)

// Detector is the route deviation state machine. A deviation record is
// opened only after the vehicle has stayed beyond the distance threshold
// for the full duration threshold, so a single noisy sample never raises
// an alert.
type Detector struct {
	// DistanceKM is the cross-track distance beyond which a sample counts
	// as off-route.
	DistanceKM float64
	// Duration is how long the vehicle must stay off-route before a
	// record is opened.
	Duration time.Duration
	// MaxAccuracyM caps the GPS accuracy a sample may report and still
	// feed the detector; wilder samples are ignored here (they are
	// already flagged suspect on ingest).
	MaxAccuracyM float64
}

// deviationTransition describes what the detector did with one sample.
type deviationTransition struct {
	opened bool
	closed *models.DeviationRecord // resolved record, nil unless closed
}

// observe feeds one accepted sample into the state machine. The caller
// holds the shipment entry's write lock.
func (d *Detector) observe(e *shipmentEntry, crossKM float64, report models.PositionReport) deviationTransition {
	if report.Suspect || (d.MaxAccuracyM > 0 && report.AccuracyM > d.MaxAccuracyM) {
		// Unreliable sample: leave the state machine untouched.
		return deviationTransition{}
	}

	e.lastCrossKM = crossKM
	now := report.Timestamp

	if crossKM <= d.DistanceKM {
		e.deviationSince = time.Time{}
		if e.deviation != nil {
			rec := e.deviation
			rec.Resolved = true
			rec.ResolvedAt = now
			e.deviation = nil
			return deviationTransition{closed: rec}
		}
		return deviationTransition{}
	}

	// Off route.
	if e.deviation != nil {
		// Still deviating: update the open record in place.
		if crossKM > e.deviation.DistanceKM {
			e.deviation.DistanceKM = crossKM
		}
		return deviationTransition{}
	}

	if e.deviationSince.IsZero() {
		e.deviationSince = now
		return deviationTransition{}
	}
	if now.Sub(e.deviationSince) < d.Duration {
		return deviationTransition{}
	}

	e.deviation = &models.DeviationRecord{
		ID:         uuid.New().String(),
		ShipmentID: report.ShipmentID,
		DistanceKM: crossKM,
		DetectedAt: e.deviationSince,
	}
	return deviationTransition{opened: true}
}
