package routes

import (
	"errors"
	"net/http"

	"fleet-tracking/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler exposes the route endpoints consumed by the booking service.
type Handler struct {
	service  ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new route handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

// CreateRoute handles POST /routes.
func (h *Handler) CreateRoute(c echo.Context) error {
	var req models.CreateRouteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	route, err := h.service.CreateRoute(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRoute) {
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.CreateRoute: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create route"})
	}

	return c.JSON(http.StatusCreated, route)
}

// GetRoute handles GET /shipments/:shipmentId/route.
func (h *Handler) GetRoute(c echo.Context) error {
	shipmentID := c.Param("shipmentId")

	route, err := h.service.GetRoute(c.Request().Context(), shipmentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No route for shipment"})
		}
		c.Logger().Error("Handler.GetRoute: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get route"})
	}

	return c.JSON(http.StatusOK, route)
}
