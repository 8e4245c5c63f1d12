package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
)

const maxForecastNights = 366

var ErrForecastWindowTooLong = fmt.Errorf("%w: forecast window exceeds %d nights", availability.ErrInvalidDateRange, maxForecastNights)

type ForecastRequest struct {
	CampgroundID uint
	From         time.Time
	To           time.Time
}

// ForecastNight is the projection for one night. Booked revenue spreads each
// reservation's total evenly over its nights; open revenue prices every
// in-service site nobody has booked at that night's rate.
type ForecastNight struct {
	Date               time.Time `json:"date"`
	TotalSites         int       `json:"total_sites"`
	BookedSites        int       `json:"booked_sites"`
	OutOfServiceSites  int       `json:"out_of_service_sites"`
	OpenSites          int       `json:"open_sites"`
	OccupancyPct       float64   `json:"occupancy_pct"`
	BookedRevenueCents int64     `json:"booked_revenue_cents"`
	OpenRevenueCents   int64     `json:"open_revenue_cents"`
}

type Forecast struct {
	CampgroundID        uint            `json:"campground_id"`
	From                time.Time       `json:"from"`
	To                  time.Time       `json:"to"`
	Nights              []ForecastNight `json:"nights"`
	BookedRevenueCents  int64           `json:"booked_revenue_cents"`
	OpenRevenueCents    int64           `json:"open_revenue_cents"`
	AverageOccupancyPct float64         `json:"average_occupancy_pct"`
}

type ForecastService interface {
	Generate(ctx context.Context, req ForecastRequest) (Forecast, error)
}

type forecastService struct {
	siteRepo repository.SiteRepository
	resRepo  repository.ReservationRepository
	rateRepo repository.RateRepository
}

func NewForecastService(siteRepo repository.SiteRepository, resRepo repository.ReservationRepository, rateRepo repository.RateRepository) ForecastService {
	return &forecastService{siteRepo: siteRepo, resRepo: resRepo, rateRepo: rateRepo}
}

func (s *forecastService) Generate(ctx context.Context, req ForecastRequest) (Forecast, error) {
	window, err := availability.NewInterval(req.From, req.To)
	if err != nil {
		return Forecast{}, err
	}
	if window.Nights() > maxForecastNights {
		return Forecast{}, ErrForecastWindowTooLong
	}

	sites, err := s.siteRepo.ListByCampground(ctx, req.CampgroundID)
	if err != nil {
		return Forecast{}, fmt.Errorf("load sites: %w", err)
	}
	reservations, err := s.resRepo.FindBlockingByCampground(ctx, req.CampgroundID, &window.Arrival, &window.Departure)
	if err != nil {
		return Forecast{}, fmt.Errorf("load reservations: %w", err)
	}
	blocks, err := s.siteRepo.FindMaintenanceByCampground(ctx, req.CampgroundID, window.Arrival, window.Departure)
	if err != nil {
		return Forecast{}, fmt.Errorf("load maintenance blocks: %w", err)
	}
	plans, err := s.rateRepo.ListRatePlans(ctx, req.CampgroundID)
	if err != nil {
		return Forecast{}, fmt.Errorf("load rate plans: %w", err)
	}
	rules, err := s.rateRepo.ListPricingRules(ctx, req.CampgroundID)
	if err != nil {
		return Forecast{}, fmt.Errorf("load pricing rules: %w", err)
	}

	out := Forecast{
		CampgroundID: req.CampgroundID,
		From:         window.Arrival,
		To:           window.Departure,
		Nights:       make([]ForecastNight, 0, window.Nights()),
	}
	var occupancySum float64
	for night := window.Arrival; night.Before(window.Departure); night = night.AddDate(0, 0, 1) {
		n, err := s.projectNight(night, sites, reservations, blocks, plans, rules)
		if err != nil {
			return Forecast{}, err
		}
		out.Nights = append(out.Nights, n)
		out.BookedRevenueCents += n.BookedRevenueCents
		out.OpenRevenueCents += n.OpenRevenueCents
		occupancySum += n.OccupancyPct
	}
	out.AverageOccupancyPct = round2(occupancySum / float64(len(out.Nights)))
	return out, nil
}

func (s *forecastService) projectNight(
	night time.Time,
	sites []models.Site,
	reservations []models.Reservation,
	blocks []models.MaintenanceBlock,
	plans []models.RatePlan,
	rules []models.PricingRule,
) (ForecastNight, error) {
	n := ForecastNight{Date: night, TotalSites: len(sites)}

	booked := make(map[uint]bool)
	for _, r := range reservations {
		stay := availability.Interval{Arrival: models.DateOnly(r.ArrivalDate), Departure: models.DateOnly(r.DepartureDate)}
		if !stay.Contains(night) {
			continue
		}
		booked[r.SiteID] = true
		n.BookedRevenueCents += nightlyShare(r.TotalCents, stay, night)
	}
	blocked := make(map[uint]bool)
	for _, b := range blocks {
		if (availability.Interval{Arrival: models.DateOnly(b.StartDate), Departure: models.DateOnly(b.EndDate)}).Contains(night) {
			blocked[b.SiteID] = true
		}
	}

	open := make(map[uint]int)
	classes := make(map[uint]*models.SiteClass)
	for _, site := range sites {
		switch {
		case booked[site.ID]:
			n.BookedSites++
		case site.Status == models.SiteMaintenance || blocked[site.ID]:
			n.OutOfServiceSites++
		default:
			n.OpenSites++
			if site.SiteClass != nil {
				open[site.SiteClassID]++
				classes[site.SiteClassID] = site.SiteClass
			}
		}
	}
	if n.TotalSites > 0 {
		n.OccupancyPct = round2(float64(n.BookedSites) * 100 / float64(n.TotalSites))
	}

	// price one night per class at the occupancy the night already carries
	for classID, count := range open {
		q, err := pricing.Calculate(pricing.Input{
			Stay:             availability.Interval{Arrival: night, Departure: night.AddDate(0, 0, 1)},
			SiteClassID:      classID,
			DefaultRateCents: classes[classID].DefaultRateCents,
			Plans:            plans,
			Rules:            rules,
			OccupancyPct:     map[time.Time]float64{night: n.OccupancyPct},
		})
		if errors.Is(err, pricing.ErrQuoteUnavailable) {
			continue
		}
		if err != nil {
			return ForecastNight{}, fmt.Errorf("price class %d on %s: %w", classID, night.Format(models.DateLayout), err)
		}
		n.OpenRevenueCents += q.TotalCents * int64(count)
	}
	return n, nil
}

// nightlyShare splits total evenly over the stay; the first night carries
// the remainder so the shares add back up to total.
func nightlyShare(total int64, stay availability.Interval, night time.Time) int64 {
	nights := int64(stay.Nights())
	if nights < 1 {
		return 0
	}
	share := total / nights
	if night.Equal(stay.Arrival) {
		share += total % nights
	}
	return share
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
