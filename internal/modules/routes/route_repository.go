package routes

import (
	"context"
	"errors"
	"fmt"

	"fleet-tracking/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface declares the persistence operations for planned routes.
type RepositoryInterface interface {
	// Save stores a route, replacing any existing route for the same
	// shipment (re-routing replaces, never edits).
	Save(ctx context.Context, route *models.Route) error
	// FindByShipmentID returns the active route for a shipment.
	FindByShipmentID(ctx context.Context, shipmentID string) (*models.Route, error)
}

// Repository is the PostgreSQL implementation of RepositoryInterface.
// Waypoints are stored as a JSONB column; pgx maps the slice directly.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new route repository backed by pgx.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Save upserts the route row keyed by shipment id.
func (r *Repository) Save(ctx context.Context, route *models.Route) error {
	query := `
        INSERT INTO routes (id, shipment_id, waypoints, distance_km)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (shipment_id) DO UPDATE
        SET id = EXCLUDED.id, waypoints = EXCLUDED.waypoints, distance_km = EXCLUDED.distance_km, created_at = now()
        RETURNING created_at`
	err := r.db.QueryRow(ctx, query, route.ID, route.ShipmentID, route.Waypoints, route.DistanceKM).
		Scan(&route.CreatedAt)
	if err != nil {
		return fmt.Errorf("repo.SaveRoute: %w", err)
	}
	return nil
}

// FindByShipmentID retrieves the planned route for a shipment.
func (r *Repository) FindByShipmentID(ctx context.Context, shipmentID string) (*models.Route, error) {
	query := `
        SELECT id, shipment_id, waypoints, distance_km, created_at
        FROM routes
        WHERE shipment_id = $1`
	route := &models.Route{}
	err := r.db.QueryRow(ctx, query, shipmentID).
		Scan(&route.ID, &route.ShipmentID, &route.Waypoints, &route.DistanceKM, &route.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repo.FindRouteByShipmentID: %w", err)
	}
	return route, nil
}
