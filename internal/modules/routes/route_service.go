package routes

import (
	"context"
	"fmt"
	"log/slog"

	"fleet-tracking/internal/geo"
	"fleet-tracking/internal/models"

	"github.com/google/uuid"
)

// ServiceInterface defines the business logic around planned routes.
type ServiceInterface interface {
	CreateRoute(ctx context.Context, req models.CreateRouteRequest) (*models.Route, error)
	GetRoute(ctx context.Context, shipmentID string) (*models.Route, error)
}

// Service implements ServiceInterface.
type Service struct {
	repo   RepositoryInterface
	logger *slog.Logger
}

// NewService creates a new route service.
func NewService(repo RepositoryInterface, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRoute validates the waypoints, computes the planned distance and
// stores the route. Creating a route for a shipment that already has one
// replaces it (re-routing).
func (s *Service) CreateRoute(ctx context.Context, req models.CreateRouteRequest) (*models.Route, error) {
	if len(req.Waypoints) < 2 {
		return nil, models.ErrInvalidRoute
	}
	path := make([]geo.Point, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		p := geo.Point{Lat: wp.Latitude, Lon: wp.Longitude}
		if !p.Valid() {
			return nil, models.ErrInvalidRoute
		}
		path[i] = p
	}

	route := &models.Route{
		ID:         uuid.New().String(),
		ShipmentID: req.ShipmentID,
		Waypoints:  req.Waypoints,
		DistanceKM: geo.PolylineLengthKM(path),
	}
	if err := s.repo.Save(ctx, route); err != nil {
		return nil, fmt.Errorf("service.CreateRoute: %w", err)
	}

	s.logger.Info("route created",
		"shipment_id", route.ShipmentID,
		"waypoints", len(route.Waypoints),
		"distance_km", route.DistanceKM)
	return route, nil
}

// GetRoute returns the active route for a shipment.
func (s *Service) GetRoute(ctx context.Context, shipmentID string) (*models.Route, error) {
	return s.repo.FindByShipmentID(ctx, shipmentID)
}

// Path converts a route's waypoints into geometry points for the
// estimator and deviation detector.
func Path(route *models.Route) []geo.Point {
	path := make([]geo.Point, len(route.Waypoints))
	for i, wp := range route.Waypoints {
		path[i] = geo.Point{Lat: wp.Latitude, Lon: wp.Longitude}
	}
	return path
}
