package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidRoute is returned when a route has fewer than two waypoints
	// or a waypoint with out-of-range coordinates.
	ErrInvalidRoute = errors.New("route must have at least two waypoints with valid coordinates")

	// ErrUnknownShipment is returned when a position report arrives for a
	// shipment with no active route. The caller must create a route first.
	ErrUnknownShipment = errors.New("no active route for shipment")

	// ErrInvalidCoordinates is returned when a position report carries
	// coordinates outside the WGS84 range.
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrStaleReport marks an out-of-order position report. Stale reports
	// are dropped and logged; they never overwrite accepted state.
	ErrStaleReport = errors.New("report older than last accepted report")

	// ErrImplausibleReading marks a sensor value outside plausible bounds.
	// The report is still accepted, flagged as suspect.
	ErrImplausibleReading = errors.New("implausible sensor reading")

	// ErrTrackingInactive is returned when a report arrives for a shipment
	// whose tracking has been stopped or delivered.
	ErrTrackingInactive = errors.New("tracking is not active for shipment")
)

// ErrorResponse is the JSON error body returned by HTTP handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
