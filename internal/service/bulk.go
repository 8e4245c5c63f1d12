package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lifecycle"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type BulkTransitionInput struct {
	IDs    []uint
	Target models.ReservationStatus
	// AllowedSources defaults to every status that may move to Target.
	AllowedSources []models.ReservationStatus
}

// BulkResult reports a best-effort batch. Partial success is normal.
type BulkResult struct {
	Updated    int             `json:"updated"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	UpdatedIDs []uint          `json:"updated_ids"`
	SkippedIDs []uint          `json:"skipped_ids"`
	FailedIDs  []uint          `json:"failed_ids"`
	Errors     map[uint]string `json:"errors,omitempty"`
}

var errNoLongerEligible = errors.New("status changed before the transition was applied")

type outcome int

const (
	outcomeUpdated outcome = iota
	outcomeSkipped
	outcomeFailed
)

// BulkTransition moves each eligible reservation to the target status
// independently. Reservations outside AllowedSources are skipped without
// being touched; unknown ids and per-item errors count as failed.
func (s *reservationService) BulkTransition(ctx context.Context, in BulkTransitionInput) (BulkResult, error) {
	if !in.Target.Valid() {
		return BulkResult{}, fmt.Errorf("%w: unknown status %q", lifecycle.ErrInvalidTransition, in.Target)
	}
	allowed := in.AllowedSources
	if len(allowed) == 0 {
		allowed = lifecycle.SourcesOf(in.Target)
	}

	ids := dedupe(in.IDs)
	found, err := s.resRepo.FindByIDs(ctx, ids)
	if err != nil {
		return BulkResult{}, fmt.Errorf("load reservations: %w", err)
	}
	current := make(map[uint]models.ReservationStatus, len(found))
	for _, r := range found {
		current[r.ID] = r.Status
	}

	var (
		mu       sync.Mutex
		outcomes = make(map[uint]outcome, len(ids))
		errs     = make(map[uint]string)
	)
	record := func(id uint, o outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[id] = o
		if err != nil {
			errs[id] = err.Error()
		}
	}

	var g errgroup.Group
	g.SetLimit(s.opts.BulkConcurrency)
	for _, id := range ids {
		status, ok := current[id]
		switch {
		case !ok:
			record(id, outcomeFailed, ErrReservationNotFound)
			continue
		case !slices.Contains(allowed, status):
			record(id, outcomeSkipped, nil)
			continue
		}

		g.Go(func() error {
			err := s.transitionOne(ctx, id, in.Target, allowed)
			switch {
			case err == nil:
				record(id, outcomeUpdated, nil)
			case errors.Is(err, errNoLongerEligible):
				record(id, outcomeSkipped, nil)
			default:
				log.Printf("[ReservationService] bulk %s on reservation %d: %v", in.Target, id, err)
				record(id, outcomeFailed, err)
			}
			// items are independent: one failure never cancels the rest
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{UpdatedIDs: []uint{}, SkippedIDs: []uint{}, FailedIDs: []uint{}}
	for _, id := range ids {
		switch outcomes[id] {
		case outcomeUpdated:
			res.UpdatedIDs = append(res.UpdatedIDs, id)
		case outcomeSkipped:
			res.SkippedIDs = append(res.SkippedIDs, id)
		case outcomeFailed:
			res.FailedIDs = append(res.FailedIDs, id)
		}
	}
	res.Updated, res.Skipped, res.Failed = len(res.UpdatedIDs), len(res.SkippedIDs), len(res.FailedIDs)
	if len(errs) > 0 {
		res.Errors = errs
	}
	return res, nil
}

func (s *reservationService) transitionOne(ctx context.Context, id uint, target models.ReservationStatus, allowed []models.ReservationStatus) error {
	var (
		updated *models.Reservation
		from    models.ReservationStatus
	)
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		r, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if !slices.Contains(allowed, r.Status) {
			return errNoLongerEligible
		}
		from = r.Status
		if err := lifecycle.Apply(r, target, s.now()); err != nil {
			return err
		}
		if err := s.resRepo.Save(ctx, tx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return err
	}
	publish(s.publisher, KeyReservationStatusChanged, statusChanged(updated, from))
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
