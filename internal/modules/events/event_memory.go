package events

import (
	"context"
	"sort"
	"sync"

	"fleet-tracking/internal/models"
)

// MemoryRepository is an in-memory RepositoryInterface used by tests and
// deployments without PostgreSQL.
type MemoryRepository struct {
	mu     sync.RWMutex
	byShip map[string][]*models.TrackingEvent
}

// NewMemoryRepository creates an empty in-memory event log.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byShip: make(map[string][]*models.TrackingEvent)}
}

// Append stores a copy of the event.
func (m *MemoryRepository) Append(_ context.Context, event *models.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.byShip[event.ShipmentID] = append(m.byShip[event.ShipmentID], &cp)
	return nil
}

// ListByShipmentID returns the shipment's events ordered by timestamp
// ascending, ties broken by id so repeated calls return the same sequence.
func (m *MemoryRepository) ListByShipmentID(_ context.Context, shipmentID string) ([]*models.TrackingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.byShip[shipmentID]
	out := make([]*models.TrackingEvent, len(stored))
	for i, ev := range stored {
		cp := *ev
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
