package tracking

import (
	"errors"
	"net/http"
	"time"

	"fleet-tracking/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{}

// Handler exposes the ingest and query endpoints of the tracking engine.
type Handler struct {
	service  ServiceInterface
	validate *validator.Validate
	// streamInterval is how often the WebSocket stream pushes snapshots.
	streamInterval time.Duration
}

// NewHandler creates a new tracking handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{
		service:        service,
		validate:       validator.New(),
		streamInterval: 3 * time.Second,
	}
}

// SubmitPosition handles POST /shipments/:shipmentId/positions.
func (h *Handler) SubmitPosition(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	var req models.PositionReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	result, err := h.service.SubmitPosition(c.Request().Context(), shipmentID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownShipment):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No active route for shipment; create a route first"})
		case errors.Is(err, models.ErrInvalidCoordinates):
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Coordinates out of range"})
		case errors.Is(err, models.ErrTrackingInactive):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Tracking is no longer active for this shipment"})
		}
		c.Logger().Error("Handler.SubmitPosition: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to process position report"})
	}

	// Stale reports come back accepted=false with no error; the device
	// should not retry them.
	return c.JSON(http.StatusOK, result)
}

// GetLiveState handles GET /shipments/:shipmentId/live.
func (h *Handler) GetLiveState(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	state, err := h.service.GetLiveState(c.Request().Context(), shipmentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No tracking data for shipment"})
		}
		c.Logger().Error("Handler.GetLiveState: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get live state"})
	}
	return c.JSON(http.StatusOK, state)
}

// GetETA handles GET /shipments/:shipmentId/eta.
func (h *Handler) GetETA(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	eta, err := h.service.GetETA(c.Request().Context(), shipmentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No tracking data for shipment"})
		}
		c.Logger().Error("Handler.GetETA: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get ETA"})
	}
	return c.JSON(http.StatusOK, eta)
}

// GetRouteMonitoring handles GET /shipments/:shipmentId/monitoring.
func (h *Handler) GetRouteMonitoring(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	mon, err := h.service.GetRouteMonitoring(c.Request().Context(), shipmentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No tracking data for shipment"})
		}
		c.Logger().Error("Handler.GetRouteMonitoring: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get route monitoring"})
	}
	return c.JSON(http.StatusOK, mon)
}

// ListDeviations handles GET /shipments/:shipmentId/deviations.
func (h *Handler) ListDeviations(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	recs, err := h.service.ListDeviations(c.Request().Context(), shipmentID)
	if err != nil {
		c.Logger().Error("Handler.ListDeviations: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list deviations"})
	}
	if recs == nil {
		recs = []*models.DeviationRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

// StartTracking handles POST /shipments/:shipmentId/start.
func (h *Handler) StartTracking(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	if err := h.service.StartTracking(c.Request().Context(), shipmentID); err != nil {
		if errors.Is(err, models.ErrUnknownShipment) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No active route for shipment; create a route first"})
		}
		c.Logger().Error("Handler.StartTracking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to start tracking"})
	}
	return c.NoContent(http.StatusNoContent)
}

// StopTracking handles POST /shipments/:shipmentId/stop.
func (h *Handler) StopTracking(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	if err := h.service.StopTracking(c.Request().Context(), shipmentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No tracking data for shipment"})
		}
		c.Logger().Error("Handler.StopTracking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to stop tracking"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmDelivered handles POST /shipments/:shipmentId/delivered, the
// booking service's delivery-confirmation signal.
func (h *Handler) ConfirmDelivered(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	var body struct {
		Note string `json:"note"`
	}
	// The note is optional; an empty body is fine.
	_ = c.Bind(&body)

	if err := h.service.ConfirmDelivered(c.Request().Context(), shipmentID, body.Note); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No tracking data for shipment"})
		}
		c.Logger().Error("Handler.ConfirmDelivered: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to confirm delivery"})
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleTracking upgrades the connection to a WebSocket and streams live
// state snapshots until the client disconnects or tracking goes inactive.
func (h *Handler) HandleTracking(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Read pump: we expect no client messages, but reading is what
	// surfaces a disconnect between write ticks.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		state, err := h.service.GetLiveState(ctx, shipmentID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				_ = conn.WriteJSON(models.ErrorResponse{Message: "No tracking data for shipment"})
				return nil
			}
			return nil
		}
		if err := conn.WriteJSON(state); err != nil {
			return nil
		}
		if !state.Active {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-clientGone:
			return nil
		case <-ticker.C:
		}
	}
}
