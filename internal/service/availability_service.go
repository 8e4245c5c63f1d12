package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"gorm.io/gorm"
)

type OverlapRequest struct {
	CampgroundID uint
	SiteID       uint
	Arrival      time.Time
	Departure    time.Time
	ExcludeID    uint
}

type MatchRequest struct {
	CampgroundID uint
	Arrival      time.Time
	Departure    time.Time
	Adults       int
	Children     int
	SiteType     models.SiteType
	RigLength    int
	Limit        int
}

// SiteMatch is one ranked suggestion for a guest's stay.
type SiteMatch struct {
	Site             models.Site `json:"site"`
	TypeMatch        bool        `json:"type_match"`
	FitsParty        bool        `json:"fits_party"`
	FitsRig          bool        `json:"fits_rig"`
	NightlyRateCents int64       `json:"nightly_rate_cents"`
}

type AvailabilityService interface {
	CheckOverlap(ctx context.Context, req OverlapRequest) (availability.Result, error)
	ListOverlaps(ctx context.Context, campgroundID uint) ([]availability.Overlap, error)
	MatchSites(ctx context.Context, req MatchRequest) ([]SiteMatch, error)
}

type availabilityService struct {
	siteRepo repository.SiteRepository
	resRepo  repository.ReservationRepository
}

func NewAvailabilityService(siteRepo repository.SiteRepository, resRepo repository.ReservationRepository) AvailabilityService {
	return &availabilityService{siteRepo: siteRepo, resRepo: resRepo}
}

func (s *availabilityService) CheckOverlap(ctx context.Context, req OverlapRequest) (availability.Result, error) {
	iv, err := availability.NewInterval(req.Arrival, req.Departure)
	if err != nil {
		return availability.Result{}, err
	}
	site, err := findSite(ctx, s.siteRepo, nil, req.CampgroundID, req.SiteID)
	if err != nil {
		return availability.Result{}, err
	}

	reservations, err := s.resRepo.FindBlockingBySite(ctx, nil, req.SiteID, iv.Arrival, iv.Departure)
	if err != nil {
		return availability.Result{}, fmt.Errorf("load reservations: %w", err)
	}
	blocks, err := s.siteRepo.FindMaintenanceBySite(ctx, nil, req.SiteID, iv.Arrival, iv.Departure)
	if err != nil {
		return availability.Result{}, fmt.Errorf("load maintenance blocks: %w", err)
	}

	return availability.CheckSite(site, iv, reservations, blocks, req.ExcludeID), nil
}

func (s *availabilityService) ListOverlaps(ctx context.Context, campgroundID uint) ([]availability.Overlap, error) {
	reservations, err := s.resRepo.FindBlockingByCampground(ctx, campgroundID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return availability.ListOverlaps(reservations), nil
}

// MatchSites ranks the free sites for a stay: type match first, then sites
// that fit the party, then sites that fit the rig, then the cheapest.
func (s *availabilityService) MatchSites(ctx context.Context, req MatchRequest) ([]SiteMatch, error) {
	iv, err := availability.NewInterval(req.Arrival, req.Departure)
	if err != nil {
		return nil, err
	}

	sites, err := s.siteRepo.ListByCampground(ctx, req.CampgroundID)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	reservations, err := s.resRepo.FindBlockingByCampground(ctx, req.CampgroundID, &iv.Arrival, &iv.Departure)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	blocks, err := s.siteRepo.FindMaintenanceByCampground(ctx, req.CampgroundID, iv.Arrival, iv.Departure)
	if err != nil {
		return nil, fmt.Errorf("load maintenance blocks: %w", err)
	}

	party := req.Adults + req.Children
	free := availability.FilterAvailable(sites, iv, reservations, blocks)
	matches := make([]SiteMatch, 0, len(free))
	for _, site := range free {
		m := SiteMatch{
			Site:      site,
			TypeMatch: req.SiteType == "" || site.Type == req.SiteType,
			FitsParty: true,
			FitsRig:   req.RigLength == 0 || site.MaxRigLength == 0 || req.RigLength <= site.MaxRigLength,
		}
		if site.SiteClass != nil {
			m.NightlyRateCents = site.SiteClass.DefaultRateCents
			m.FitsParty = site.SiteClass.MaxOccupancy == 0 || party <= site.SiteClass.MaxOccupancy
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.TypeMatch != b.TypeMatch {
			return a.TypeMatch
		}
		if a.FitsParty != b.FitsParty {
			return a.FitsParty
		}
		if a.FitsRig != b.FitsRig {
			return a.FitsRig
		}
		if a.NightlyRateCents != b.NightlyRateCents {
			return a.NightlyRateCents < b.NightlyRateCents
		}
		return a.Site.ID < b.Site.ID
	})

	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	return matches, nil
}

// findSite loads a site and checks it belongs to the campground. A zero
// campgroundID skips the ownership check.
func findSite(ctx context.Context, repo repository.SiteRepository, tx *gorm.DB, campgroundID, siteID uint) (*models.Site, error) {
	site, err := repo.FindByID(ctx, tx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("load site: %w", err)
	}
	if campgroundID != 0 && site.CampgroundID != campgroundID {
		return nil, ErrSiteNotFound
	}
	return site, nil
}

// lockSiteRow takes the row lock on a site inside tx and checks ownership.
func lockSiteRow(ctx context.Context, repo repository.SiteRepository, tx *gorm.DB, campgroundID, siteID uint) (*models.Site, error) {
	site, err := repo.FindByIDForUpdate(ctx, tx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("lock site: %w", err)
	}
	if campgroundID != 0 && site.CampgroundID != campgroundID {
		return nil, ErrSiteNotFound
	}
	return site, nil
}
