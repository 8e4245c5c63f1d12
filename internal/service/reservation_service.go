package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/deposit"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lifecycle"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lock"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateReservationInput struct {
	CampgroundID uint
	SiteID       uint
	GuestID      uint
	Arrival      time.Time
	Departure    time.Time
	Adults       int
	Children     int
	Pets         int
	Status       models.ReservationStatus

	FeesCents      int64
	TaxesCents     int64
	DiscountsCents int64
	PaidCents      int64
	// ManualTotalCents replaces the computed total, and is required when
	// no quote can be produced.
	ManualTotalCents *int64

	PromoCode      string
	Source         string
	Notes          string
	Rig            models.RigDetails
	HoldID         string
	GroupID        *uint
	IsGroupPrimary bool
}

// UpdateReservationInput is a partial edit; nil fields are left unchanged.
type UpdateReservationInput struct {
	Status    *models.ReservationStatus
	SiteID    *uint
	Arrival   *time.Time
	Departure *time.Time
	Adults    *int
	Children  *int
	Pets      *int

	TotalCents     *int64
	FeesCents      *int64
	TaxesCents     *int64
	DiscountsCents *int64
	// PaymentStatus is checked against the derived value and never stored.
	PaymentStatus *models.PaymentStatus

	PromoCode *string
	Source    *string
	Notes     *string
	Rig       *models.RigDetails

	OverrideReason     string
	OverrideApprovedBy string
}

// ReservationDetail is a reservation with its deposit position.
type ReservationDetail struct {
	Reservation     models.Reservation
	Quote           *pricing.Quote
	DepositDueCents int64
	Warnings        []string
}

type UnderpaidReservation struct {
	Reservation     models.Reservation
	DepositDueCents int64
	ShortfallCents  int64
}

type ReservationOptions struct {
	// StrictHolds rejects bookings that do not present a live matching hold.
	StrictHolds     bool
	BulkConcurrency int
}

type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*ReservationDetail, error)
	Get(ctx context.Context, id uint) (*ReservationDetail, error)
	List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error)
	Update(ctx context.Context, id uint, in UpdateReservationInput) (*ReservationDetail, error)
	RecordPayment(ctx context.Context, id uint, amountCents int64) (*ReservationDetail, error)
	Delete(ctx context.Context, id uint) error
	ListUnderpaid(ctx context.Context, campgroundID uint) ([]UnderpaidReservation, error)
	NotifyUnderpaid(ctx context.Context) (int, error)
	BulkTransition(ctx context.Context, in BulkTransitionInput) (BulkResult, error)
}

type reservationService struct {
	tx        repository.Transactor
	siteRepo  repository.SiteRepository
	resRepo   repository.ReservationRepository
	holdRepo  repository.HoldRepository
	rateRepo  repository.RateRepository
	quotes    QuoteService
	locker    lock.Locker
	publisher EventPublisher
	opts      ReservationOptions
	now       func() time.Time
}

func NewReservationService(
	tx repository.Transactor,
	siteRepo repository.SiteRepository,
	resRepo repository.ReservationRepository,
	holdRepo repository.HoldRepository,
	rateRepo repository.RateRepository,
	quotes QuoteService,
	locker lock.Locker,
	publisher EventPublisher,
	opts ReservationOptions,
) ReservationService {
	if opts.BulkConcurrency < 1 {
		opts.BulkConcurrency = 1
	}
	return &reservationService{
		tx:        tx,
		siteRepo:  siteRepo,
		resRepo:   resRepo,
		holdRepo:  holdRepo,
		rateRepo:  rateRepo,
		quotes:    quotes,
		locker:    locker,
		publisher: publisher,
		opts:      opts,
		now:       utcNow,
	}
}

func (s *reservationService) Create(ctx context.Context, in CreateReservationInput) (*ReservationDetail, error) {
	iv, err := availability.NewInterval(in.Arrival, in.Departure)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if status != models.StatusPending && status != models.StatusConfirmed {
		return nil, ErrInvalidStatus
	}

	var quote *pricing.Quote
	q, err := s.quotes.GetQuote(ctx, QuoteRequest{
		CampgroundID: in.CampgroundID,
		SiteID:       in.SiteID,
		Arrival:      iv.Arrival,
		Departure:    iv.Departure,
	})
	switch {
	case err == nil:
		quote = &q
	case errors.Is(err, pricing.ErrQuoteUnavailable) && in.ManualTotalCents != nil:
		log.Printf("[ReservationService] site %d %s: %v, using manual total", in.SiteID, iv, err)
	default:
		return nil, err
	}

	r := &models.Reservation{
		CampgroundID:   in.CampgroundID,
		SiteID:         in.SiteID,
		GuestID:        in.GuestID,
		ArrivalDate:    iv.Arrival,
		DepartureDate:  iv.Departure,
		Adults:         in.Adults,
		Children:       in.Children,
		Pets:           in.Pets,
		Status:         status,
		FeesCents:      in.FeesCents,
		TaxesCents:     in.TaxesCents,
		DiscountsCents: in.DiscountsCents,
		PaidCents:      in.PaidCents,
		PromoCode:      in.PromoCode,
		Source:         in.Source,
		Notes:          in.Notes,
		Rig:            datatypes.NewJSONType(in.Rig),
		GroupID:        in.GroupID,
		IsGroupPrimary: in.IsGroupPrimary,
	}
	priceReservation(r, quote, in.ManualTotalCents)
	lifecycle.RecomputeTotals(r)

	release, err := lockSite(ctx, s.locker, in.SiteID)
	if err != nil {
		return nil, &UnavailableError{Reasons: []string{fmt.Sprintf("site %d is busy: %v", in.SiteID, err)}}
	}
	defer release()

	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the site row
		site, err := lockSiteRow(ctx, s.siteRepo, tx, in.CampgroundID, in.SiteID)
		if err != nil {
			return err
		}
		r.CampgroundID = site.CampgroundID

		// 2. Consume the caller's hold, if it is still good
		now := s.now()
		consumed, err := s.claimHold(ctx, tx, in.HoldID, site.ID, iv, now)
		if err != nil {
			return err
		}

		// 3. Nobody else may hold the slot
		holds, err := s.holdRepo.FindActiveBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure, now)
		if err != nil {
			return err
		}
		if res := availability.CheckHolds(iv, holds, consumed, now); res.Conflict {
			return res.Err()
		}

		// 4. Overlap check against committed stays
		if err := s.checkSite(ctx, tx, site, iv, 0); err != nil {
			return err
		}

		if consumed != "" {
			r.HoldID = &consumed
		}
		return s.resRepo.Create(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}

	detail := s.detail(ctx, r)
	detail.Quote = quote
	publish(s.publisher, KeyReservationCreated, r)
	return detail, nil
}

// claimHold consumes the presented hold when it is live and matches the
// stay, returning its id. Unusable holds are never reused: strict mode
// rejects the booking, advisory mode books without the hold.
func (s *reservationService) claimHold(ctx context.Context, tx *gorm.DB, holdID string, siteID uint, iv availability.Interval, now time.Time) (string, error) {
	if holdID == "" {
		if s.opts.StrictHolds {
			return "", ErrHoldRequired
		}
		return "", nil
	}

	h, err := s.holdRepo.FindByID(ctx, tx, holdID)
	var problem string
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		problem = "is unknown or already consumed"
	case err != nil:
		return "", err
	case h.Expired(now):
		problem = "has expired"
	case h.SiteID != siteID ||
		!models.DateOnly(h.Arrival).Equal(iv.Arrival) ||
		!models.DateOnly(h.Departure).Equal(iv.Departure):
		problem = "does not match the stay"
	}
	if problem != "" {
		if s.opts.StrictHolds {
			return "", fmt.Errorf("%w: hold %s %s", ErrHoldRequired, holdID, problem)
		}
		log.Printf("[ReservationService] hold %s %s, booking without it", holdID, problem)
		return "", nil
	}

	if err := s.holdRepo.Delete(ctx, tx, holdID); err != nil {
		return "", err
	}
	return holdID, nil
}

// checkSite runs the overlap and site status check for a stay inside tx.
func (s *reservationService) checkSite(ctx context.Context, tx *gorm.DB, site *models.Site, iv availability.Interval, excludeID uint) error {
	reservations, err := s.resRepo.FindBlockingBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure)
	if err != nil {
		return err
	}
	blocks, err := s.siteRepo.FindMaintenanceBySite(ctx, tx, site.ID, iv.Arrival, iv.Departure)
	if err != nil {
		return err
	}
	return availability.CheckSite(site, iv, reservations, blocks, excludeID).Err()
}

// priceReservation sets subtotal and total. The quote total is the base
// subtotal; fees and taxes are added and discounts taken off on top of it.
func priceReservation(r *models.Reservation, q *pricing.Quote, manualTotal *int64) {
	if q != nil {
		r.BaseSubtotalCents = q.TotalCents
	}
	r.TotalCents = r.BaseSubtotalCents + r.FeesCents + r.TaxesCents - r.DiscountsCents
	if manualTotal != nil {
		r.TotalCents = *manualTotal
		if q == nil {
			r.BaseSubtotalCents = max(0, *manualTotal-r.FeesCents-r.TaxesCents+r.DiscountsCents)
		}
	}
	r.TotalCents = max(0, r.TotalCents)
}

func (s *reservationService) Get(ctx context.Context, id uint) (*ReservationDetail, error) {
	r, err := s.find(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, r), nil
}

func (s *reservationService) List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error) {
	return s.resRepo.List(ctx, q)
}

// Update applies a partial edit to a working copy of the reservation. When
// the edit is rejected or cannot be persisted, the returned detail holds the
// snapshot taken before the edit together with the error.
func (s *reservationService) Update(ctx context.Context, id uint, in UpdateReservationInput) (*ReservationDetail, error) {
	current, err := s.find(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if movesStay(current, in) {
		target := current.SiteID
		if in.SiteID != nil {
			target = *in.SiteID
		}
		release, err := lockSite(ctx, s.locker, target)
		if err != nil {
			return nil, fmt.Errorf("%w: site %d is busy: %v", ErrUnavailable, target, err)
		}
		defer release()
	}

	var write *pendingWrite
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		r, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		write = beginWrite(r)
		if err := s.applyUpdate(ctx, tx, write.working, in); err != nil {
			return err
		}
		return s.resRepo.Save(ctx, tx, write.working)
	})
	if err != nil {
		if write == nil {
			return nil, err
		}
		restored := write.rollback()
		return s.detail(ctx, &restored), err
	}

	r := write.working
	detail := s.detail(ctx, r)
	if in.PaymentStatus != nil && *in.PaymentStatus != r.PaymentStatus {
		detail.Warnings = append(detail.Warnings, fmt.Sprintf(
			"payment status is derived from paid and total: %s, not %s", r.PaymentStatus, *in.PaymentStatus,
		))
	}

	publish(s.publisher, KeyReservationUpdated, r)
	if from := write.snapshot.Status; from != r.Status {
		publish(s.publisher, KeyReservationStatusChanged, statusChanged(r, from))
	}
	return detail, nil
}

func movesStay(r *models.Reservation, in UpdateReservationInput) bool {
	return (in.SiteID != nil && *in.SiteID != r.SiteID) ||
		(in.Arrival != nil && !models.DateOnly(*in.Arrival).Equal(models.DateOnly(r.ArrivalDate))) ||
		(in.Departure != nil && !models.DateOnly(*in.Departure).Equal(models.DateOnly(r.DepartureDate)))
}

func (s *reservationService) applyUpdate(ctx context.Context, tx *gorm.DB, r *models.Reservation, in UpdateReservationInput) error {
	now := s.now()

	if in.Status != nil && *in.Status != r.Status {
		if err := lifecycle.Apply(r, *in.Status, now); err != nil {
			return err
		}
	}

	if moneyChanged(r, in) {
		override := lifecycle.Override{Reason: in.OverrideReason, ApprovedBy: in.OverrideApprovedBy}
		if err := lifecycle.RequireOverrideJustification(r, override, now); err != nil {
			return err
		}
		setInt64(&r.FeesCents, in.FeesCents)
		setInt64(&r.TaxesCents, in.TaxesCents)
		setInt64(&r.DiscountsCents, in.DiscountsCents)
		if in.TotalCents != nil {
			r.TotalCents = max(0, *in.TotalCents)
		} else {
			r.TotalCents = max(0, r.BaseSubtotalCents+r.FeesCents+r.TaxesCents-r.DiscountsCents)
		}
	}

	if movesStay(r, in) {
		siteID, arrival, departure := r.SiteID, r.ArrivalDate, r.DepartureDate
		if in.SiteID != nil {
			siteID = *in.SiteID
		}
		if in.Arrival != nil {
			arrival = *in.Arrival
		}
		if in.Departure != nil {
			departure = *in.Departure
		}
		iv, err := availability.NewInterval(arrival, departure)
		if err != nil {
			return err
		}
		if r.Status.Blocking() {
			site, err := lockSiteRow(ctx, s.siteRepo, tx, r.CampgroundID, siteID)
			if err != nil {
				return err
			}
			if err := s.checkSite(ctx, tx, site, iv, r.ID); err != nil {
				return err
			}
			holds, err := s.holdRepo.FindActiveBySite(ctx, tx, siteID, iv.Arrival, iv.Departure, now)
			if err != nil {
				return err
			}
			if res := availability.CheckHolds(iv, holds, "", now); res.Conflict {
				return res.Err()
			}
		}
		r.SiteID, r.ArrivalDate, r.DepartureDate = siteID, iv.Arrival, iv.Departure
	}

	setInt(&r.Adults, in.Adults)
	setInt(&r.Children, in.Children)
	setInt(&r.Pets, in.Pets)
	setString(&r.PromoCode, in.PromoCode)
	setString(&r.Source, in.Source)
	setString(&r.Notes, in.Notes)
	if in.Rig != nil {
		r.Rig = datatypes.NewJSONType(*in.Rig)
	}

	lifecycle.RecomputeTotals(r)
	return nil
}

// moneyChanged reports whether the edit touches a monetary field, which
// counts as a manual override.
func moneyChanged(r *models.Reservation, in UpdateReservationInput) bool {
	differs := func(v *int64, cur int64) bool { return v != nil && *v != cur }
	return differs(in.TotalCents, r.TotalCents) ||
		differs(in.FeesCents, r.FeesCents) ||
		differs(in.TaxesCents, r.TaxesCents) ||
		differs(in.DiscountsCents, r.DiscountsCents)
}

func (s *reservationService) RecordPayment(ctx context.Context, id uint, amountCents int64) (*ReservationDetail, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	var write *pendingWrite
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		r, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		write = beginWrite(r)
		write.working.PaidCents += amountCents
		lifecycle.RecomputeTotals(write.working)
		return s.resRepo.Save(ctx, tx, write.working)
	})
	if err != nil {
		if write == nil {
			return nil, err
		}
		restored := write.rollback()
		return s.detail(ctx, &restored), err
	}

	publish(s.publisher, KeyReservationUpdated, write.working)
	return s.detail(ctx, write.working), nil
}

func (s *reservationService) Delete(ctx context.Context, id uint) error {
	if err := s.resRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	publish(s.publisher, KeyReservationDeleted, DeletedEvent{ReservationID: id})
	return nil
}

// ListUnderpaid returns live reservations whose paid amount is below the
// deposit their campground requires today.
func (s *reservationService) ListUnderpaid(ctx context.Context, campgroundID uint) ([]UnderpaidReservation, error) {
	cfg, err := s.rateRepo.FindDepositConfig(ctx, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("load deposit config: %w", err)
	}
	outstanding, err := s.resRepo.FindOutstanding(ctx, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	now := s.now()
	underpaid := []UnderpaidReservation{}
	for i := range outstanding {
		r := &outstanding[i]
		due, err := deposit.Due(depositInput(r, cfg, now))
		if err != nil {
			return nil, err
		}
		if short := deposit.Shortfall(r.PaidCents, due); short > 0 {
			underpaid = append(underpaid, UnderpaidReservation{Reservation: *r, DepositDueCents: due, ShortfallCents: short})
		}
	}
	return underpaid, nil
}

// NotifyUnderpaid publishes one event per underpaid reservation across all
// campgrounds and returns how many were found.
func (s *reservationService) NotifyUnderpaid(ctx context.Context) (int, error) {
	campgrounds, err := s.siteRepo.ListCampgroundIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list campgrounds: %w", err)
	}
	count := 0
	for _, id := range campgrounds {
		underpaid, err := s.ListUnderpaid(ctx, id)
		if err != nil {
			return count, fmt.Errorf("campground %d: %w", id, err)
		}
		for _, u := range underpaid {
			publish(s.publisher, KeyReservationUnderpaid, UnderpaidEvent{
				ReservationID:   u.Reservation.ID,
				CampgroundID:    u.Reservation.CampgroundID,
				DepositDueCents: u.DepositDueCents,
				PaidCents:       u.Reservation.PaidCents,
				ShortfallCents:  u.ShortfallCents,
			})
		}
		count += len(underpaid)
	}
	return count, nil
}

func (s *reservationService) find(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	r, err := s.resRepo.FindByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *reservationService) detail(ctx context.Context, r *models.Reservation) *ReservationDetail {
	d := &ReservationDetail{Reservation: *r, Warnings: []string{}}
	cfg, err := s.rateRepo.FindDepositConfig(ctx, r.CampgroundID)
	if err == nil {
		d.DepositDueCents, err = deposit.Due(depositInput(r, cfg, s.now()))
	}
	if err != nil {
		log.Printf("[ReservationService] deposit for reservation %d: %v", r.ID, err)
		d.Warnings = append(d.Warnings, "deposit due could not be computed")
		return d
	}
	if short := deposit.Shortfall(r.PaidCents, d.DepositDueCents); short > 0 && r.Status.Blocking() {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"paid %d is below the deposit due of %d (short %d)", r.PaidCents, d.DepositDueCents, short,
		))
	}
	return d
}

func depositInput(r *models.Reservation, cfg *models.DepositConfig, now time.Time) deposit.Input {
	return deposit.FromConfig(deposit.Input{
		TotalCents: r.TotalCents,
		FeesCents:  r.FeesCents,
		Nights:     r.Nights(),
		Arrival:    r.ArrivalDate,
		AsOf:       now,
	}, cfg)
}

func statusChanged(r *models.Reservation, from models.ReservationStatus) StatusChangedEvent {
	return StatusChangedEvent{
		ReservationID: r.ID,
		CampgroundID:  r.CampgroundID,
		SiteID:        r.SiteID,
		From:          string(from),
		To:            string(r.Status),
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
