package handler

import (
	"net/http"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type DepositHandler struct {
	svc service.DepositService
}

func NewDepositHandler(svc service.DepositService) *DepositHandler {
	return &DepositHandler{svc: svc}
}

func (h *DepositHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/deposits/calculate", h.Calculate)
}

func (h *DepositHandler) Calculate(c echo.Context) error {
	var req dto.DepositCalculateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Rule == "" && req.CampgroundID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "rule or campground_id is required")
	}

	var arrival time.Time
	if req.Arrival != "" {
		a, err := models.ParseDate(req.Arrival)
		if err != nil {
			return mapError(err)
		}
		arrival = a
	}

	result, err := h.svc.Calculate(c.Request().Context(), service.DepositRequest{
		CampgroundID:   req.CampgroundID,
		TotalCents:     req.TotalCents,
		FeesCents:      req.FeesCents,
		Nights:         req.Nights,
		Arrival:        arrival,
		Rule:           models.DepositRule(req.Rule),
		Percentage:     req.Percentage,
		FullWithinDays: req.FullWithinDays,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}
