package routes

import (
	"context"
	"log/slog"
	"testing"

	"fleet-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), slog.Default())
}

func TestCreateRoute(t *testing.T) {
	t.Parallel()

	t.Run("computes planned distance", func(t *testing.T) {
		t.Parallel()
		svc := newTestService()
		route, err := svc.CreateRoute(context.Background(), models.CreateRouteRequest{
			ShipmentID: "shp_1",
			Waypoints: []models.Waypoint{
				{Latitude: 0, Longitude: 0, Name: "pickup"},
				{Latitude: 0, Longitude: 1, Name: "drop"},
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, route.ID)
		// One degree of longitude at the equator is ~111.2 km.
		assert.InDelta(t, 111.2, route.DistanceKM, 0.5)
	})

	t.Run("rejects fewer than two waypoints", func(t *testing.T) {
		t.Parallel()
		svc := newTestService()
		_, err := svc.CreateRoute(context.Background(), models.CreateRouteRequest{
			ShipmentID: "shp_1",
			Waypoints:  []models.Waypoint{{Latitude: 1, Longitude: 1}},
		})
		assert.ErrorIs(t, err, models.ErrInvalidRoute)
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		t.Parallel()
		svc := newTestService()
		_, err := svc.CreateRoute(context.Background(), models.CreateRouteRequest{
			ShipmentID: "shp_1",
			Waypoints: []models.Waypoint{
				{Latitude: 91, Longitude: 0},
				{Latitude: 0, Longitude: 0},
			},
		})
		assert.ErrorIs(t, err, models.ErrInvalidRoute)
	})

	t.Run("re-routing replaces the existing route", func(t *testing.T) {
		t.Parallel()
		svc := newTestService()
		ctx := context.Background()

		first, err := svc.CreateRoute(ctx, models.CreateRouteRequest{
			ShipmentID: "shp_1",
			Waypoints: []models.Waypoint{
				{Latitude: 0, Longitude: 0},
				{Latitude: 0, Longitude: 1},
			},
		})
		require.NoError(t, err)

		second, err := svc.CreateRoute(ctx, models.CreateRouteRequest{
			ShipmentID: "shp_1",
			Waypoints: []models.Waypoint{
				{Latitude: 0, Longitude: 0},
				{Latitude: 0, Longitude: 2},
			},
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		got, err := svc.GetRoute(ctx, "shp_1")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Greater(t, got.DistanceKM, first.DistanceKM)
	})
}

func TestGetRouteNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.GetRoute(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
