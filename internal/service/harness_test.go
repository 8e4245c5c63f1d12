package service

import (
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lock"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

const campground = uint(1)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store        *memStore
	pub          *recordingPublisher
	holds        *holdService
	quotes       QuoteService
	forecasts    ForecastService
	reservations *reservationService
	class        models.SiteClass
	site         models.Site
}

func newHarness(opts ReservationOptions) *harness {
	store := newMemStore()
	pub := &recordingPublisher{}
	locker := lock.NewLocalLocker()
	sites, res, holds, rates := memSites{store}, memReservations{store}, memHolds{store}, memRates{store}

	h := &harness{store: store, pub: pub}
	h.class = store.addClass(campground, 5000, 6)
	h.site = store.addSite(campground, h.class.ID, models.SiteTypeRV, 40)

	h.holds = NewHoldService(noopTx{}, sites, res, holds, locker, pub, 10*time.Minute).(*holdService)
	h.holds.now = func() time.Time { return testNow }
	h.quotes = NewQuoteService(sites, res, rates)
	h.forecasts = NewForecastService(sites, res, rates)
	h.reservations = NewReservationService(noopTx{}, sites, res, holds, rates, h.quotes, locker, pub, opts).(*reservationService)
	h.reservations.now = func() time.Time { return testNow }
	return h
}

func (h *harness) seed(siteID uint, arrival, departure string, status models.ReservationStatus) models.Reservation {
	return h.store.addReservation(models.Reservation{
		CampgroundID:  campground,
		SiteID:        siteID,
		GuestID:       9,
		ArrivalDate:   day(arrival),
		DepartureDate: day(departure),
		Adults:        2,
		Status:        status,
		TotalCents:    10000,
	})
}

// closeSite flags a site as under maintenance.
func (h *harness) closeSite(id uint) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	s := h.store.sites[id]
	s.Status = models.SiteMaintenance
	h.store.sites[id] = s
}
