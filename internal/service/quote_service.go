package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/calendar"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
)

type QuoteRequest struct {
	CampgroundID uint
	SiteID       uint
	Arrival      time.Time
	Departure    time.Time
}

// DraftRequest is a calendar selection: an inclusive day-index span over a
// window of NumDays starting at WindowStart.
type DraftRequest struct {
	CampgroundID uint
	SiteID       uint
	WindowStart  time.Time
	NumDays      int
	StartIndex   int
	EndIndex     int
}

type QuoteService interface {
	GetQuote(ctx context.Context, req QuoteRequest) (pricing.Quote, error)
	DraftQuote(ctx context.Context, req DraftRequest) (calendar.Draft, pricing.Quote, error)
}

type quoteService struct {
	siteRepo repository.SiteRepository
	resRepo  repository.ReservationRepository
	rateRepo repository.RateRepository
}

func NewQuoteService(siteRepo repository.SiteRepository, resRepo repository.ReservationRepository, rateRepo repository.RateRepository) QuoteService {
	return &quoteService{siteRepo: siteRepo, resRepo: resRepo, rateRepo: rateRepo}
}

func (s *quoteService) GetQuote(ctx context.Context, req QuoteRequest) (pricing.Quote, error) {
	iv, err := availability.NewInterval(req.Arrival, req.Departure)
	if err != nil {
		return pricing.Quote{}, err
	}
	site, err := findSite(ctx, s.siteRepo, nil, req.CampgroundID, req.SiteID)
	if err != nil {
		return pricing.Quote{}, err
	}
	if site.SiteClass == nil {
		return pricing.Quote{}, fmt.Errorf("%w: site %d has no site class", pricing.ErrQuoteUnavailable, site.ID)
	}

	plans, err := s.rateRepo.ListRatePlans(ctx, site.CampgroundID)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("load rate plans: %w", err)
	}
	rules, err := s.rateRepo.ListPricingRules(ctx, site.CampgroundID)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("load pricing rules: %w", err)
	}
	occupancy, err := s.occupancy(ctx, site.CampgroundID, iv)
	if err != nil {
		return pricing.Quote{}, err
	}

	return pricing.Calculate(pricing.Input{
		Stay:             iv,
		SiteClassID:      site.SiteClassID,
		DefaultRateCents: site.SiteClass.DefaultRateCents,
		Plans:            plans,
		Rules:            rules,
		OccupancyPct:     occupancy,
	})
}

func (s *quoteService) DraftQuote(ctx context.Context, req DraftRequest) (calendar.Draft, pricing.Quote, error) {
	days := calendar.WindowDays(req.WindowStart, req.NumDays)
	draft, err := calendar.DraftFromIndices(req.SiteID, days, req.StartIndex, req.EndIndex)
	if err != nil {
		return calendar.Draft{}, pricing.Quote{}, err
	}
	q, err := s.GetQuote(ctx, QuoteRequest{
		CampgroundID: req.CampgroundID,
		SiteID:       draft.SiteID,
		Arrival:      draft.Arrival,
		Departure:    draft.Departure,
	})
	return draft, q, err
}

// occupancy is the share of the campground's sites (0-100) taken by
// blocking reservations on each night of the stay.
func (s *quoteService) occupancy(ctx context.Context, campgroundID uint, iv availability.Interval) (map[time.Time]float64, error) {
	sites, err := s.siteRepo.ListByCampground(ctx, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	reservations, err := s.resRepo.FindBlockingByCampground(ctx, campgroundID, &iv.Arrival, &iv.Departure)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	occ := make(map[time.Time]float64, iv.Nights())
	if len(sites) == 0 {
		return occ, nil
	}
	for night := iv.Arrival; night.Before(iv.Departure); night = night.AddDate(0, 0, 1) {
		taken := make(map[uint]bool)
		for _, r := range reservations {
			stay := availability.Interval{Arrival: models.DateOnly(r.ArrivalDate), Departure: models.DateOnly(r.DepartureDate)}
			if stay.Contains(night) {
				taken[r.SiteID] = true
			}
		}
		occ[night] = float64(len(taken)) * 100 / float64(len(sites))
	}
	return occ, nil
}
