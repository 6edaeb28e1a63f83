package events

import (
	"net/http"
	"time"

	"fleet-tracking/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler exposes the event log endpoints.
type Handler struct {
	dispatcher *Dispatcher
	validate   *validator.Validate
}

// NewHandler creates a new event handler.
func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		validate:   validator.New(),
	}
}

// ListEvents handles GET /shipments/:shipmentId/events.
func (h *Handler) ListEvents(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	events, err := h.dispatcher.ListEvents(c.Request().Context(), shipmentID)
	if err != nil {
		c.Logger().Error("Handler.ListEvents: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list events"})
	}
	if events == nil {
		events = []*models.TrackingEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

// RecordEvent handles POST /shipments/:shipmentId/events, letting an
// operator record a status change with a free-text note.
func (h *Handler) RecordEvent(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	var req models.ManualEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	event := &models.TrackingEvent{
		ShipmentID: shipmentID,
		Type:       req.Type,
		Note:       req.Note,
		EmittedBy:  models.EmittedByUser,
		Timestamp:  time.Now(),
	}
	if err := h.dispatcher.Emit(c.Request().Context(), event); err != nil {
		c.Logger().Error("Handler.RecordEvent: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to record event"})
	}

	return c.JSON(http.StatusCreated, event)
}
