package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type AvailabilityHandler struct {
	svc service.AvailabilityService
}

func NewAvailabilityHandler(svc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/campgrounds")
	g.POST("/:id/availability/check", h.CheckOverlap)
	g.GET("/:id/overlaps", h.ListOverlaps)
	g.POST("/:id/matched-sites", h.MatchSites)
}

func (h *AvailabilityHandler) CheckOverlap(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.OverlapCheckRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	arrival, departure, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	result, err := h.svc.CheckOverlap(c.Request().Context(), service.OverlapRequest{
		CampgroundID: campgroundID,
		SiteID:       req.SiteID,
		Arrival:      arrival,
		Departure:    departure,
		ExcludeID:    req.ExcludeReservationID,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AvailabilityHandler) ListOverlaps(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	overlaps, err := h.svc.ListOverlaps(c.Request().Context(), campgroundID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, overlaps)
}

func (h *AvailabilityHandler) MatchSites(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.MatchSitesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	arrival, departure, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	matches, err := h.svc.MatchSites(c.Request().Context(), service.MatchRequest{
		CampgroundID: campgroundID,
		Arrival:      arrival,
		Departure:    departure,
		Adults:       req.Adults,
		Children:     req.Children,
		SiteType:     models.SiteType(req.SiteType),
		RigLength:    req.RigLength,
		Limit:        req.Limit,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, matches)
}
