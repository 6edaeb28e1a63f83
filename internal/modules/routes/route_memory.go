package routes

import (
	"context"
	"sync"
	"time"

	"fleet-tracking/internal/models"
)

// MemoryRepository is an in-memory RepositoryInterface used by tests and
// single-node deployments that run without PostgreSQL.
type MemoryRepository struct {
	mu     sync.RWMutex
	routes map[string]*models.Route
}

// NewMemoryRepository creates an empty in-memory route repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{routes: make(map[string]*models.Route)}
}

// Save stores the route, replacing any previous route for the shipment.
func (m *MemoryRepository) Save(_ context.Context, route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now()
	}
	cp := *route
	cp.Waypoints = append([]models.Waypoint(nil), route.Waypoints...)
	m.routes[route.ShipmentID] = &cp
	return nil
}

// FindByShipmentID returns the stored route or models.ErrNotFound.
func (m *MemoryRepository) FindByShipmentID(_ context.Context, shipmentID string) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	route, ok := m.routes[shipmentID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *route
	cp.Waypoints = append([]models.Waypoint(nil), route.Waypoints...)
	return &cp, nil
}
