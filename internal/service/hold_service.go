package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lock"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoldRequest struct {
	CampgroundID uint
	SiteID       uint
	Arrival      time.Time
	Departure    time.Time
}

type HoldService interface {
	CreateHold(ctx context.Context, req HoldRequest) (*models.Hold, error)
	ReleaseHold(ctx context.Context, id string) error
	ExpireHolds(ctx context.Context) ([]models.Hold, error)
}

type holdService struct {
	tx        repository.Transactor
	siteRepo  repository.SiteRepository
	resRepo   repository.ReservationRepository
	holdRepo  repository.HoldRepository
	locker    lock.Locker
	publisher EventPublisher
	ttl       time.Duration
	now       func() time.Time
}

func NewHoldService(
	tx repository.Transactor,
	siteRepo repository.SiteRepository,
	resRepo repository.ReservationRepository,
	holdRepo repository.HoldRepository,
	locker lock.Locker,
	publisher EventPublisher,
	ttl time.Duration,
) HoldService {
	return &holdService{
		tx:        tx,
		siteRepo:  siteRepo,
		resRepo:   resRepo,
		holdRepo:  holdRepo,
		locker:    locker,
		publisher: publisher,
		ttl:       ttl,
		now:       utcNow,
	}
}

// CreateHold grants a short-lived claim on a site. It fails with
// ErrUnavailable when the stay conflicts with a reservation, a maintenance
// block or another live hold, and also when the backend cannot be reached.
func (s *holdService) CreateHold(ctx context.Context, req HoldRequest) (*models.Hold, error) {
	iv, err := availability.NewInterval(req.Arrival, req.Departure)
	if err != nil {
		return nil, err
	}

	release, err := lockSite(ctx, s.locker, req.SiteID)
	if err != nil {
		return nil, &UnavailableError{Reasons: []string{fmt.Sprintf("site %d is busy: %v", req.SiteID, err)}}
	}
	defer release()

	var hold *models.Hold
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the site row
		site, err := lockSiteRow(ctx, s.siteRepo, tx, req.CampgroundID, req.SiteID)
		if err != nil {
			return err
		}

		// 2. Committed reservations, maintenance and site status
		reservations, err := s.resRepo.FindBlockingBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure)
		if err != nil {
			return err
		}
		blocks, err := s.siteRepo.FindMaintenanceBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure)
		if err != nil {
			return err
		}
		if res := availability.CheckSite(site, iv, reservations, blocks, 0); res.Conflict {
			return &UnavailableError{Reasons: res.Reasons}
		}

		// 3. Other live holds
		now := s.now()
		holds, err := s.holdRepo.FindActiveBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure, now)
		if err != nil {
			return err
		}
		if res := availability.CheckHolds(iv, holds, "", now); res.Conflict {
			return &UnavailableError{Reasons: res.Reasons}
		}

		hold = &models.Hold{
			ID:           uuid.NewString(),
			CampgroundID: site.CampgroundID,
			SiteID:       site.ID,
			Arrival:      iv.Arrival,
			Departure:    iv.Departure,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.ttl),
		}
		return s.holdRepo.Create(ctx, tx, hold)
	})
	if err != nil {
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrSiteNotFound) {
			return nil, err
		}
		log.Printf("[HoldService] site %d %s: %v", req.SiteID, iv, err)
		return nil, &UnavailableError{Reasons: []string{"hold could not be recorded"}}
	}

	publish(s.publisher, KeyHoldCreated, hold)
	return hold, nil
}

func (s *holdService) ReleaseHold(ctx context.Context, id string) error {
	hold, err := s.holdRepo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHoldNotFound
		}
		return err
	}
	if err := s.holdRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHoldNotFound
		}
		return err
	}
	publish(s.publisher, KeyHoldReleased, hold)
	return nil
}

// ExpireHolds deletes every hold whose TTL has passed.
func (s *holdService) ExpireHolds(ctx context.Context) ([]models.Hold, error) {
	expired, err := s.holdRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("delete expired holds: %w", err)
	}
	for i := range expired {
		publish(s.publisher, KeyHoldExpired, &expired[i])
	}
	if len(expired) > 0 {
		log.Printf("[HoldService] expired %d holds", len(expired))
	}
	return expired, nil
}
