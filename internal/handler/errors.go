package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/calendar"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/deposit"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lifecycle"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

// mapError turns a service error into an HTTP error. The original error is
// kept as the internal cause so the error handler can surface its reasons.
func mapError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSiteNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrHoldNotFound):
		code = http.StatusNotFound
	case errors.Is(err, availability.ErrConflictDetected),
		errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrHoldRequired),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		code = http.StatusConflict
	case errors.Is(err, pricing.ErrQuoteUnavailable),
		errors.Is(err, lifecycle.ErrOverrideJustificationRequired):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, availability.ErrInvalidDateRange),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, deposit.ErrUnknownRule),
		errors.Is(err, calendar.ErrIndexOutOfRange),
		errors.Is(err, calendar.ErrEmptyGrid):
		code = http.StatusBadRequest
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func parseID(c echo.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

// bind decodes and validates a request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
