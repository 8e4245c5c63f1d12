package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_HTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.NewHTTPError(http.StatusNotFound, "reservation not found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reservation not found", resp.Message)
}

func TestErrorHandler_ConflictReasons(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	conflict := &availability.ConflictError{Reasons: []string{"reservation #4 occupies 2024-07-01..2024-07-03"}}
	ErrorHandler(echo.NewHTTPError(http.StatusConflict, availability.ErrConflictDetected.Error()).SetInternal(conflict), c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, availability.ErrConflictDetected.Error(), resp.Message)
	assert.Equal(t, conflict.Reasons, resp.Reasons)
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(errors.New("pq: password authentication failed"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

type sample struct {
	Arrival string `json:"arrival_date" validate:"required,datetime=2006-01-02"`
	Status  string `json:"status" validate:"omitempty,oneof=pending confirmed"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(sample{Arrival: "2024-07-01"}))

	err := v.Validate(sample{Arrival: "07/01/2024", Status: "archived"})
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "arrival_date must be a date")
	assert.Contains(t, he.Message, "status must be one of")
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}
