package service

import (
	"context"
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/calendar"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote_OccupancySurcharge(t *testing.T) {
	h := newHarness(ReservationOptions{})
	second := h.store.addSite(campground, h.class.ID, models.SiteTypeRV, 40)
	h.seed(second.ID, "2024-07-01", "2024-07-02", models.StatusConfirmed)
	h.store.rules = append(h.store.rules, models.PricingRule{
		ID: 1, CampgroundID: campground, Name: "Busy", Type: models.RuleOccupancy,
		AdjustmentType: models.AdjustPercent, Adjustment: 10, MinOccupancyPct: 50, Active: true,
	})

	q, err := h.quotes.GetQuote(context.Background(), QuoteRequest{
		CampgroundID: campground,
		SiteID:       h.site.ID,
		Arrival:      day("2024-07-01"),
		Departure:    day("2024-07-03"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, q.Nights)
	assert.Equal(t, int64(10000), q.BaseSubtotalCents)
	// only the first night is half full
	assert.Equal(t, int64(500), q.RulesDeltaCents)
	assert.Equal(t, int64(10500), q.TotalCents)
	assert.Equal(t, []string{"Busy"}, q.AppliedRules)
}

func TestGetQuote_Deterministic(t *testing.T) {
	h := newHarness(ReservationOptions{})
	req := QuoteRequest{CampgroundID: campground, SiteID: h.site.ID, Arrival: day("2024-07-05"), Departure: day("2024-07-08")}

	first, err := h.quotes.GetQuote(context.Background(), req)
	require.NoError(t, err)
	second, err := h.quotes.GetQuote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetQuote_SiteWithoutClass(t *testing.T) {
	h := newHarness(ReservationOptions{})
	orphan := h.store.addSite(campground, 777, models.SiteTypeTent, 0)

	_, err := h.quotes.GetQuote(context.Background(), QuoteRequest{
		CampgroundID: campground, SiteID: orphan.ID, Arrival: day("2024-07-01"), Departure: day("2024-07-02"),
	})

	assert.ErrorIs(t, err, pricing.ErrQuoteUnavailable)
}

func TestDraftQuote_MapsIndicesToDates(t *testing.T) {
	h := newHarness(ReservationOptions{})

	draft, q, err := h.quotes.DraftQuote(context.Background(), DraftRequest{
		CampgroundID: campground,
		SiteID:       h.site.ID,
		WindowStart:  day("2024-07-01"),
		NumDays:      14,
		StartIndex:   4,
		EndIndex:     2,
	})

	require.NoError(t, err)
	assert.Equal(t, day("2024-07-03"), draft.Arrival)
	assert.Equal(t, day("2024-07-06"), draft.Departure)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, int64(15000), q.TotalCents)
}

func TestDraftQuote_OutOfWindow(t *testing.T) {
	h := newHarness(ReservationOptions{})

	_, _, err := h.quotes.DraftQuote(context.Background(), DraftRequest{
		CampgroundID: campground, SiteID: h.site.ID, WindowStart: day("2024-07-01"), NumDays: 7, StartIndex: 5, EndIndex: 9,
	})

	assert.ErrorIs(t, err, calendar.ErrIndexOutOfRange)
}
