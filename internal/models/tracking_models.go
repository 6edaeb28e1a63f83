package models

import "time"

// PositionReport is a single validated position sample for a shipment.
// DeviceTag is an opaque identifier carried for diagnostics only; device
// registry data lives outside this service.
type PositionReport struct {
	ShipmentID     string    `json:"shipment_id"`
	DeviceTag      string    `json:"device_tag,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	SpeedKMH       float64   `json:"speed_kmh"`
	HeadingDeg     float64   `json:"heading_deg"`
	AltitudeM      float64   `json:"altitude_m"`
	AccuracyM      float64   `json:"accuracy_m"`
	BatteryLevel   int       `json:"battery_level"`
	SignalStrength int       `json:"signal_strength"`
	Timestamp      time.Time `json:"timestamp"`
	// Suspect marks a report that failed plausibility checks (for example
	// an impossible speed) but was accepted anyway so tracking does not
	// stall on sensor noise.
	Suspect bool `json:"suspect,omitempty"`
}

// PositionReportRequest is the ingest payload pushed by a tracking device
// or gateway. SpeedKMH carries no range tag on purpose: an out-of-range
// speed is still ingested, flagged suspect, so tracking does not stall on
// sensor noise.
type PositionReportRequest struct {
	DeviceTag      string    `json:"device_tag,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	SpeedKMH       float64   `json:"speed_kmh"`
	HeadingDeg     float64   `json:"heading_deg" validate:"gte=0,lte=360"`
	AltitudeM      float64   `json:"altitude_m"`
	AccuracyM      float64   `json:"accuracy_m" validate:"gte=0"`
	BatteryLevel   int       `json:"battery_level" validate:"gte=0,lte=100"`
	SignalStrength int       `json:"signal_strength" validate:"gte=0,lte=100"`
	Timestamp      time.Time `json:"timestamp" validate:"required"`
}

// IngestResult tells the reporting device what happened to its sample.
type IngestResult struct {
	Accepted bool   `json:"accepted"`
	Suspect  bool   `json:"suspect,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// LiveState is the mutable tracking projection for one active shipment.
// There is exactly one per shipment; it is created on the first accepted
// report (or explicit start) and retained after deactivation.
type LiveState struct {
	ShipmentID          string         `json:"shipment_id"`
	Position            PositionReport `json:"position"`
	ProgressPct         float64        `json:"progress_pct"`
	DistanceRemainingKM float64        `json:"distance_remaining_km"`
	Active              bool           `json:"active"`
	Stale               bool           `json:"stale"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ETAEstimate is derived from live state on every update. Unknown is set
// when no meaningful arrival time can be computed (no movement, empty
// history); in that case Confidence is zero and ArrivalAt is unset.
type ETAEstimate struct {
	ShipmentID string    `json:"shipment_id"`
	ArrivalAt  time.Time `json:"arrival_at,omitzero"`
	Confidence float64   `json:"confidence"`
	Unknown    bool      `json:"unknown,omitempty"`
}

// RouteMonitoring is the deviation-centric projection read by dashboards.
type RouteMonitoring struct {
	ShipmentID          string  `json:"shipment_id"`
	RouteScore          float64 `json:"route_score"`
	DeviationDistanceKM float64 `json:"deviation_distance_km"`
	DeviationTimeMin    float64 `json:"deviation_time_min"`
}
