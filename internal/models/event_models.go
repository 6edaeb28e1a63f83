package models

import "time"

// EventType enumerates the discrete tracking events a shipment can emit.
type EventType string

const (
	EventPickupScheduled EventType = "pickup_scheduled"
	EventPickedUp        EventType = "picked_up"
	EventInTransit       EventType = "in_transit"
	EventOutForDelivery  EventType = "out_for_delivery"
	EventDelayed         EventType = "delayed"
	EventException       EventType = "exception"
	EventDelivered       EventType = "delivered"
)

// EventSource records whether the system or a human operator emitted an event.
type EventSource string

const (
	EmittedBySystem EventSource = "system"
	EmittedByUser   EventSource = "user"
)

// TrackingEvent is one record in the append-only per-shipment event log.
// Events are never mutated after creation; the log is the audit trail.
type TrackingEvent struct {
	ID         string      `json:"id"`
	ShipmentID string      `json:"shipment_id"`
	Type       EventType   `json:"type"`
	Note       string      `json:"note,omitempty"`
	Latitude   *float64    `json:"latitude,omitempty"`
	Longitude  *float64    `json:"longitude,omitempty"`
	EmittedBy  EventSource `json:"emitted_by"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ManualEventRequest lets an operator record a status change with a note.
type ManualEventRequest struct {
	Type EventType `json:"type" validate:"required,oneof=pickup_scheduled picked_up in_transit out_for_delivery delayed exception delivered"`
	Note string    `json:"note,omitempty" validate:"max=1000"`
}

// DeviationRecord tracks one sustained off-route episode. At most one is
// open per shipment; it is updated in place while the vehicle remains off
// route and marked resolved (never deleted) once it returns.
type DeviationRecord struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipment_id"`
	DistanceKM float64   `json:"distance_km"`
	DetectedAt time.Time `json:"detected_at"`
	ResolvedAt time.Time `json:"resolved_at,omitzero"`
	Resolved   bool      `json:"resolved"`
}

// DurationMin reports how long the deviation has lasted, using now for a
// still-open record.
func (d *DeviationRecord) DurationMin(now time.Time) float64 {
	end := now
	if d.Resolved {
		end = d.ResolvedAt
	}
	if end.Before(d.DetectedAt) {
		return 0
	}
	return end.Sub(d.DetectedAt).Minutes()
}
