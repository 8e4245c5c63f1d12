package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

const maxListLimit = 500

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	campgrounds := e.Group("/api/v1/campgrounds")
	campgrounds.GET("/:id/reservations", h.ListReservations)
	campgrounds.GET("/:id/reservations/underpaid", h.ListUnderpaid)

	reservations := e.Group("/api/v1/reservations")
	reservations.POST("", h.CreateReservation)
	reservations.POST("/bulk-status", h.BulkStatus)
	reservations.GET("/:id", h.GetReservation)
	reservations.PATCH("/:id", h.UpdateReservation)
	reservations.DELETE("/:id", h.DeleteReservation)
	reservations.POST("/:id/payments", h.RecordPayment)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	var req dto.CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	arrival, departure, err := req.Dates()
	if err != nil {
		return mapError(err)
	}

	detail, err := h.svc.Create(c.Request().Context(), service.CreateReservationInput{
		CampgroundID:     req.CampgroundID,
		SiteID:           req.SiteID,
		GuestID:          req.GuestID,
		Arrival:          arrival,
		Departure:        departure,
		Adults:           req.Adults,
		Children:         req.Children,
		Pets:             req.Pets,
		Status:           models.ReservationStatus(req.Status),
		FeesCents:        req.FeesCents,
		TaxesCents:       req.TaxesCents,
		DiscountsCents:   req.DiscountsCents,
		PaidCents:        req.PaidCents,
		ManualTotalCents: req.ManualTotalCents,
		PromoCode:        req.PromoCode,
		Source:           req.Source,
		Notes:            req.Notes,
		Rig:              req.Rig.ToModel(),
		HoldID:           req.HoldID,
		GroupID:          req.GroupID,
		IsGroupPrimary:   req.IsGroupPrimary,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toDetailResponse(detail))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

func (h *ReservationHandler) UpdateReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}
	var req dto.UpdateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := toUpdateInput(req)
	if err != nil {
		return mapError(err)
	}

	detail, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) RecordPayment(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}
	var req dto.PaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	detail, err := h.svc.RecordPayment(c.Request().Context(), id, req.AmountCents)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

func (h *ReservationHandler) BulkStatus(c echo.Context) error {
	var req dto.BulkStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.BulkTransitionInput{
		IDs:    req.IDs,
		Target: models.ReservationStatus(req.Status),
	}
	for _, s := range req.AllowedSources {
		in.AllowedSources = append(in.AllowedSources, models.ReservationStatus(s))
	}

	result, err := h.svc.BulkTransition(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListReservations accepts q, status (comma separated), site_id, from, to,
// ids (comma separated), sort and limit.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	q.CampgroundID = campgroundID

	reservations, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return mapError(err)
	}
	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) ListUnderpaid(c echo.Context) error {
	campgroundID, err := parseID(c, "campground")
	if err != nil {
		return err
	}
	underpaid, err := h.svc.ListUnderpaid(c.Request().Context(), campgroundID)
	if err != nil {
		return mapError(err)
	}
	resp := make([]dto.UnderpaidResponse, len(underpaid))
	for i := range underpaid {
		u := &underpaid[i]
		resp[i] = dto.UnderpaidResponse{
			Reservation:     dto.ToReservationResponse(&u.Reservation),
			DepositDueCents: u.DepositDueCents,
			ShortfallCents:  u.ShortfallCents,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func parseListQuery(c echo.Context) (models.ReservationQuery, error) {
	q := models.ReservationQuery{Search: strings.TrimSpace(c.QueryParam("q"))}

	for _, s := range splitCSV(c.QueryParam("status")) {
		status := models.ReservationStatus(s)
		if !status.Valid() {
			return q, echo.NewHTTPError(http.StatusBadRequest, "unknown status "+strconv.Quote(s))
		}
		q.Statuses = append(q.Statuses, status)
	}
	if v := c.QueryParam("site_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid site_id")
		}
		q.SiteID = uint(id)
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		v := c.QueryParam(p.name)
		if v == "" {
			continue
		}
		d, err := models.ParseDate(v)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, p.name+": "+err.Error())
		}
		*p.dst = &d
	}
	for _, v := range splitCSV(c.QueryParam("ids")) {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid id "+strconv.Quote(v))
		}
		q.IDs = append(q.IDs, uint(id))
	}
	switch sort := models.SortOrder(c.QueryParam("sort")); sort {
	case "", models.SortArrivalAsc, models.SortArrivalDesc, models.SortCreatedDesc:
		q.Sort = sort
	default:
		return q, echo.NewHTTPError(http.StatusBadRequest, "unknown sort "+strconv.Quote(string(sort)))
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		q.Limit = min(n, maxListLimit)
	}
	return q, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toUpdateInput(req dto.UpdateReservationRequest) (service.UpdateReservationInput, error) {
	in := service.UpdateReservationInput{
		SiteID:             req.SiteID,
		Adults:             req.Adults,
		Children:           req.Children,
		Pets:               req.Pets,
		TotalCents:         req.TotalCents,
		FeesCents:          req.FeesCents,
		TaxesCents:         req.TaxesCents,
		DiscountsCents:     req.DiscountsCents,
		PromoCode:          req.PromoCode,
		Source:             req.Source,
		Notes:              req.Notes,
		OverrideReason:     req.OverrideReason,
		OverrideApprovedBy: req.OverrideApprovedBy,
	}
	if req.Status != nil {
		s := models.ReservationStatus(*req.Status)
		in.Status = &s
	}
	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(*req.PaymentStatus)
		in.PaymentStatus = &ps
	}
	if req.Arrival != nil {
		d, err := models.ParseDate(*req.Arrival)
		if err != nil {
			return in, err
		}
		in.Arrival = &d
	}
	if req.Departure != nil {
		d, err := models.ParseDate(*req.Departure)
		if err != nil {
			return in, err
		}
		in.Departure = &d
	}
	if req.Rig != nil {
		rig := req.Rig.ToModel()
		in.Rig = &rig
	}
	return in, nil
}

func toDetailResponse(d *service.ReservationDetail) dto.ReservationResponse {
	resp := dto.ToReservationResponse(&d.Reservation)
	due := d.DepositDueCents
	resp.DepositDueCents = &due
	resp.Warnings = d.Warnings
	resp.Quote = d.Quote
	return resp
}
