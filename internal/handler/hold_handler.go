package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type HoldHandler struct {
	svc service.HoldService
}

func NewHoldHandler(svc service.HoldService) *HoldHandler {
	return &HoldHandler{svc: svc}
}

func (h *HoldHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/campgrounds/:id/holds", h.CreateHold)
	e.DELETE("/api/v1/holds/:id", h.ReleaseHold)
}

func (h *HoldHandler) CreateHold(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.HoldRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	arrival, departure, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	hold, err := h.svc.CreateHold(c.Request().Context(), service.HoldRequest{
		CampgroundID: campgroundID,
		SiteID:       req.SiteID,
		Arrival:      arrival,
		Departure:    departure,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToHoldResponse(hold))
}

func (h *HoldHandler) ReleaseHold(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hold id")
	}
	if err := h.svc.ReleaseHold(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
