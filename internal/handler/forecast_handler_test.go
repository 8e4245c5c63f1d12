package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateForecast_Handler(t *testing.T) {
	var got service.ForecastRequest
	svc := &mockForecastService{
		generateFn: func(ctx context.Context, req service.ForecastRequest) (service.Forecast, error) {
			got = req
			return service.Forecast{
				CampgroundID:       req.CampgroundID,
				From:               req.From,
				To:                 req.To,
				Nights:             []service.ForecastNight{{Date: req.From, TotalSites: 4, BookedSites: 1, OccupancyPct: 25, BookedRevenueCents: 5000}},
				BookedRevenueCents: 5000,
			}, nil
		},
	}
	e := newServer(NewForecastHandler(svc))

	rec := serve(e, http.MethodPost, "/api/v1/campgrounds/3/forecast", `{"from":"2024-07-01","to":"2024-07-02"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), got.CampgroundID)
	assert.Equal(t, date("2024-07-01"), got.From)
	assert.Equal(t, date("2024-07-02"), got.To)

	var body service.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Nights, 1)
	assert.Equal(t, 25.0, body.Nights[0].OccupancyPct)
	assert.Equal(t, int64(5000), body.BookedRevenueCents)
}

func TestGenerateForecast_BadWindow(t *testing.T) {
	e := newServer(NewForecastHandler(&mockForecastService{
		generateFn: func(ctx context.Context, req service.ForecastRequest) (service.Forecast, error) {
			return service.Forecast{}, service.ErrForecastWindowTooLong
		},
	}))

	rec := serve(e, http.MethodPost, "/api/v1/campgrounds/3/forecast", `{"from":"2024-01-01","to":"2025-06-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPost, "/api/v1/campgrounds/3/forecast", `{"from":"2024-07-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "to is required")
}
