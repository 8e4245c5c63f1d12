package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ForecastHandler struct {
	svc service.ForecastService
}

func NewForecastHandler(svc service.ForecastService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/campgrounds/:id/forecast", h.Generate)
}

// Generate projects booked revenue and occupancy night by night over [from, to).
func (h *ForecastHandler) Generate(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.ForecastRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	from, to, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	f, err := h.svc.Generate(c.Request().Context(), service.ForecastRequest{
		CampgroundID: campgroundID,
		From:         from,
		To:           to,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, f)
}
