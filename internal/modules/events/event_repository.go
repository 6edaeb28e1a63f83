package events

import (
	"context"
	"fmt"

	"fleet-tracking/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface declares persistence for the append-only tracking
// event log. Events are never updated or deleted; the log is the audit
// trail for a shipment.
type RepositoryInterface interface {
	// Append stores a new tracking event.
	Append(ctx context.Context, event *models.TrackingEvent) error
	// ListByShipmentID returns all events for a shipment ordered by
	// timestamp ascending.
	ListByShipmentID(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error)
}

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new event repository backed by pgx.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Append inserts a new tracking event.
func (r *Repository) Append(ctx context.Context, event *models.TrackingEvent) error {
	query := `
        INSERT INTO tracking_events (id, shipment_id, event_type, note, latitude, longitude, emitted_by, event_ts)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.ShipmentID, event.Type, event.Note,
		event.Latitude, event.Longitude, event.EmittedBy, event.Timestamp)
	if err != nil {
		return fmt.Errorf("repo.AppendEvent: %w", err)
	}
	return nil
}

// ListByShipmentID retrieves the event log for a shipment, oldest first.
func (r *Repository) ListByShipmentID(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error) {
	query := `
        SELECT id, shipment_id, event_type, note, latitude, longitude, emitted_by, event_ts
        FROM tracking_events
        WHERE shipment_id = $1
        ORDER BY event_ts, id`
	rows, err := r.db.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("repo.ListEvents: %w", err)
	}
	defer rows.Close()

	var events []*models.TrackingEvent
	for rows.Next() {
		ev := &models.TrackingEvent{}
		if err := rows.Scan(&ev.ID, &ev.ShipmentID, &ev.Type, &ev.Note,
			&ev.Latitude, &ev.Longitude, &ev.EmittedBy, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("repo.ListEvents scan: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ListEvents rows: %w", err)
	}
	return events, nil
}
