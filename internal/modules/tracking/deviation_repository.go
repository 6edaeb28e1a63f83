package tracking

import (
	"context"
	"fmt"
	"sync"

	"fleet-tracking/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviationRepositoryInterface persists deviation episodes. Closed
// records are retained; nothing is ever deleted.
type DeviationRepositoryInterface interface {
	// Save inserts an opened record or updates it in place while the
	// vehicle is still deviating.
	Save(ctx context.Context, rec *models.DeviationRecord) error
	// ListByShipmentID returns all episodes for a shipment, oldest first.
	ListByShipmentID(ctx context.Context, shipmentID string) ([]*models.DeviationRecord, error)
}

// DeviationRepository is the PostgreSQL implementation.
type DeviationRepository struct {
	db *pgxpool.Pool
}

// NewDeviationRepository creates a pgx-backed deviation repository.
func NewDeviationRepository(db *pgxpool.Pool) DeviationRepositoryInterface {
	return &DeviationRepository{db: db}
}

// Save upserts one deviation episode by id.
func (r *DeviationRepository) Save(ctx context.Context, rec *models.DeviationRecord) error {
	query := `
        INSERT INTO route_deviations (id, shipment_id, distance_km, detected_at, resolved_at, resolved)
        VALUES ($1, $2, $3, $4, NULLIF($5, '0001-01-01T00:00:00Z'::timestamptz), $6)
        ON CONFLICT (id) DO UPDATE
        SET distance_km = EXCLUDED.distance_km, resolved_at = EXCLUDED.resolved_at, resolved = EXCLUDED.resolved`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.ShipmentID, rec.DistanceKM, rec.DetectedAt, rec.ResolvedAt, rec.Resolved)
	if err != nil {
		return fmt.Errorf("repo.SaveDeviation: %w", err)
	}
	return nil
}

// ListByShipmentID retrieves the shipment's deviation history.
func (r *DeviationRepository) ListByShipmentID(ctx context.Context, shipmentID string) ([]*models.DeviationRecord, error) {
	query := `
        SELECT id, shipment_id, distance_km, detected_at, COALESCE(resolved_at, '0001-01-01T00:00:00Z'::timestamptz), resolved
        FROM route_deviations
        WHERE shipment_id = $1
        ORDER BY detected_at`
	rows, err := r.db.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("repo.ListDeviations: %w", err)
	}
	defer rows.Close()

	var recs []*models.DeviationRecord
	for rows.Next() {
		rec := &models.DeviationRecord{}
		if err := rows.Scan(&rec.ID, &rec.ShipmentID, &rec.DistanceKM, &rec.DetectedAt, &rec.ResolvedAt, &rec.Resolved); err != nil {
			return nil, fmt.Errorf("repo.ListDeviations scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ListDeviations rows: %w", err)
	}
	return recs, nil
}

// MemoryDeviationRepository is the in-memory implementation used by tests
// and deployments without PostgreSQL.
type MemoryDeviationRepository struct {
	mu     sync.RWMutex
	byShip map[string][]*models.DeviationRecord
	byID   map[string]*models.DeviationRecord
}

// NewMemoryDeviationRepository creates an empty in-memory repository.
func NewMemoryDeviationRepository() *MemoryDeviationRepository {
	return &MemoryDeviationRepository{
		byShip: make(map[string][]*models.DeviationRecord),
		byID:   make(map[string]*models.DeviationRecord),
	}
}

// Save upserts by record id.
func (m *MemoryDeviationRepository) Save(_ context.Context, rec *models.DeviationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byID[rec.ID]; ok {
		*existing = *rec
		return nil
	}
	cp := *rec
	m.byID[rec.ID] = &cp
	m.byShip[rec.ShipmentID] = append(m.byShip[rec.ShipmentID], &cp)
	return nil
}

// ListByShipmentID returns copies of the shipment's episodes, oldest first.
func (m *MemoryDeviationRepository) ListByShipmentID(_ context.Context, shipmentID string) ([]*models.DeviationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.byShip[shipmentID]
	out := make([]*models.DeviationRecord, len(stored))
	for i, rec := range stored {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}
