package models

import "time"

// Waypoint is a single point on a planned route.
type Waypoint struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Name      string  `json:"name,omitempty"`
}

// Route is the planned path for a shipment. It is immutable once created;
// re-routing a booking replaces the whole route.
type Route struct {
	ID         string     `json:"id"`
	ShipmentID string     `json:"shipment_id"`
	Waypoints  []Waypoint `json:"waypoints"`
	DistanceKM float64    `json:"distance_km"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateRouteRequest is the input from the booking service to register
// a planned route for a shipment.
type CreateRouteRequest struct {
	ShipmentID string     `json:"shipment_id" validate:"required"`
	Waypoints  []Waypoint `json:"waypoints" validate:"required,min=2,dive"`
}
