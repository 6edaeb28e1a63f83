package api

import (
	"net/http"

	"fleet-tracking/internal/api/middleware"
	"fleet-tracking/internal/modules/events"
	"fleet-tracking/internal/modules/routes"
	"fleet-tracking/internal/modules/tracking"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the tracking engine.
func SetupRoutes(
	e *echo.Echo,
	routeHandler *routes.Handler,
	trackingHandler *tracking.Handler,
	eventHandler *events.Handler,
	jwtSecret string,
) {
	// Initialize the JWT authentication middleware
	authMiddleware := middleware.JWTAuth(jwtSecret)
	// Position reports may only come from device tokens.
	deviceRequired := middleware.DeviceRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Live Fleet Tracking Engine"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Route Model (booking service) ---
	e.POST("/routes", routeHandler.CreateRoute, authMiddleware)

	// --- Shipment tracking ---
	shipmentGroup := e.Group("/shipments", authMiddleware)
	{
		// Ingest (devices only)
		shipmentGroup.POST("/:shipmentId/positions", trackingHandler.SubmitPosition, deviceRequired)

		// Query surface
		shipmentGroup.GET("/:shipmentId/route", routeHandler.GetRoute)
		shipmentGroup.GET("/:shipmentId/live", trackingHandler.GetLiveState)
		shipmentGroup.GET("/:shipmentId/eta", trackingHandler.GetETA)
		shipmentGroup.GET("/:shipmentId/monitoring", trackingHandler.GetRouteMonitoring)
		shipmentGroup.GET("/:shipmentId/deviations", trackingHandler.ListDeviations)
		shipmentGroup.GET("/:shipmentId/events", eventHandler.ListEvents)

		// Lifecycle commands (booking service / operators)
		shipmentGroup.POST("/:shipmentId/start", trackingHandler.StartTracking)
		shipmentGroup.POST("/:shipmentId/stop", trackingHandler.StopTracking)
		shipmentGroup.POST("/:shipmentId/delivered", trackingHandler.ConfirmDelivered)
		shipmentGroup.POST("/:shipmentId/events", eventHandler.RecordEvent)
	}

	// --- Live tracking stream ---
	e.GET("/ws/shipments/:shipmentId/track", trackingHandler.HandleTracking, authMiddleware)
}
