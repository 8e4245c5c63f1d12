package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type QuoteHandler struct {
	svc service.QuoteService
}

func NewQuoteHandler(svc service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

func (h *QuoteHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/campgrounds")
	g.POST("/:id/quotes", h.GetQuote)
	g.POST("/:id/drafts", h.DraftQuote)
}

func (h *QuoteHandler) GetQuote(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.QuoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	arrival, departure, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	q, err := h.svc.GetQuote(c.Request().Context(), service.QuoteRequest{
		CampgroundID: campgroundID,
		SiteID:       req.SiteID,
		Arrival:      arrival,
		Departure:    departure,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, dto.QuoteResponse{
		SiteID:    req.SiteID,
		Arrival:   dto.FormatDate(arrival),
		Departure: dto.FormatDate(departure),
		Quote:     q,
	})
}

// DraftQuote turns a calendar drag span into a stay and prices it.
func (h *QuoteHandler) DraftQuote(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	var req dto.DraftRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	start, err := models.ParseDate(req.WindowStart)
	if err != nil {
		return mapError(err)
	}

	draft, q, err := h.svc.DraftQuote(c.Request().Context(), service.DraftRequest{
		CampgroundID: campgroundID,
		SiteID:       req.SiteID,
		WindowStart:  start,
		NumDays:      req.NumDays,
		StartIndex:   req.StartIndex,
		EndIndex:     req.EndIndex,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, dto.QuoteResponse{
		SiteID:    draft.SiteID,
		Arrival:   dto.FormatDate(draft.Arrival),
		Departure: dto.FormatDate(draft.Departure),
		Quote:     q,
	})
}
