package service

import (
	"context"
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailability(h *harness) AvailabilityService {
	return NewAvailabilityService(memSites{h.store}, memReservations{h.store})
}

func TestCheckOverlap(t *testing.T) {
	h := newHarness(ReservationOptions{})
	existing := h.seed(h.site.ID, "2024-07-01", "2024-07-03", models.StatusConfirmed)
	svc := newAvailability(h)
	ctx := context.Background()

	tests := []struct {
		name      string
		arrival   string
		departure string
		exclude   uint
		conflict  bool
	}{
		{"back to back", "2024-07-03", "2024-07-05", 0, false},
		{"shared night", "2024-07-02", "2024-07-04", 0, true},
		{"editing itself", "2024-07-02", "2024-07-04", existing.ID, false},
		{"before", "2024-06-28", "2024-07-01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.CheckOverlap(ctx, OverlapRequest{
				CampgroundID: campground,
				SiteID:       h.site.ID,
				Arrival:      day(tt.arrival),
				Departure:    day(tt.departure),
				ExcludeID:    tt.exclude,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.conflict, res.Conflict)
		})
	}
}

func TestCheckOverlap_Errors(t *testing.T) {
	h := newHarness(ReservationOptions{})
	svc := newAvailability(h)
	ctx := context.Background()

	_, err := svc.CheckOverlap(ctx, OverlapRequest{CampgroundID: campground, SiteID: h.site.ID, Arrival: day("2024-07-03"), Departure: day("2024-07-01")})
	assert.ErrorIs(t, err, availability.ErrInvalidDateRange)

	_, err = svc.CheckOverlap(ctx, OverlapRequest{CampgroundID: campground, SiteID: 12345, Arrival: day("2024-07-01"), Departure: day("2024-07-03")})
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestListOverlaps(t *testing.T) {
	h := newHarness(ReservationOptions{})
	a := h.seed(h.site.ID, "2024-07-01", "2024-07-04", models.StatusConfirmed)
	b := h.seed(h.site.ID, "2024-07-03", "2024-07-05", models.StatusPending)
	h.seed(h.site.ID, "2024-07-02", "2024-07-03", models.StatusCancelled)

	overlaps, err := newAvailability(h).ListOverlaps(context.Background(), campground)

	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, a.ID, overlaps[0].FirstID)
	assert.Equal(t, b.ID, overlaps[0].SecondID)
	assert.Equal(t, day("2024-07-03"), overlaps[0].SharedDays.Arrival)
	assert.Equal(t, day("2024-07-04"), overlaps[0].SharedDays.Departure)
}

func TestMatchSites_Ranking(t *testing.T) {
	h := newHarness(ReservationOptions{})
	cheapTent := h.store.addClass(campground, 2500, 4)
	bigRV := h.store.addClass(campground, 9000, 10)

	tent := h.store.addSite(campground, cheapTent.ID, models.SiteTypeTent, 0)
	shortRV := h.store.addSite(campground, cheapTent.ID, models.SiteTypeRV, 20)
	largeRV := h.store.addSite(campground, bigRV.ID, models.SiteTypeRV, 45)
	busyRV := h.store.addSite(campground, cheapTent.ID, models.SiteTypeRV, 45)
	h.seed(busyRV.ID, "2024-07-01", "2024-07-05", models.StatusConfirmed)

	matches, err := newAvailability(h).MatchSites(context.Background(), MatchRequest{
		CampgroundID: campground,
		Arrival:      day("2024-07-02"),
		Departure:    day("2024-07-04"),
		Adults:       4,
		Children:     3,
		SiteType:     models.SiteTypeRV,
		RigLength:    35,
	})

	require.NoError(t, err)
	var order []uint
	for _, m := range matches {
		order = append(order, m.Site.ID)
	}
	// the harness site fits the rig but not a party of 7
	assert.Equal(t, []uint{largeRV.ID, h.site.ID, shortRV.ID, tent.ID}, order)
	assert.True(t, matches[0].FitsParty)
	assert.False(t, matches[2].FitsRig)
}

func TestCheckOverlap_SiteUnderMaintenance(t *testing.T) {
	h := newHarness(ReservationOptions{})
	h.closeSite(h.site.ID)

	res, err := newAvailability(h).CheckOverlap(context.Background(), OverlapRequest{
		CampgroundID: campground, SiteID: h.site.ID, Arrival: day("2024-07-01"), Departure: day("2024-07-02"),
	})

	require.NoError(t, err)
	assert.True(t, res.Conflict)
}
