package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/deposit"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
)

// DepositRequest prices a deposit either from an explicit rule or, when
// Rule is empty, from the campground's configured policy.
type DepositRequest struct {
	CampgroundID   uint
	TotalCents     int64
	FeesCents      int64
	Nights         int
	Arrival        time.Time
	Rule           models.DepositRule
	Percentage     float64
	FullWithinDays *int
}

type DepositResult struct {
	Rule            models.DepositRule `json:"rule"`
	DepositDueCents int64              `json:"deposit_due_cents"`
}

type DepositService interface {
	Calculate(ctx context.Context, req DepositRequest) (DepositResult, error)
}

type depositService struct {
	rateRepo repository.RateRepository
	now      func() time.Time
}

func NewDepositService(rateRepo repository.RateRepository) DepositService {
	return &depositService{rateRepo: rateRepo, now: utcNow}
}

func (s *depositService) Calculate(ctx context.Context, req DepositRequest) (DepositResult, error) {
	in := deposit.Input{
		TotalCents:     req.TotalCents,
		FeesCents:      req.FeesCents,
		Nights:         req.Nights,
		Arrival:        req.Arrival,
		AsOf:           s.now(),
		Rule:           req.Rule,
		Percentage:     req.Percentage,
		FullWithinDays: req.FullWithinDays,
	}
	if req.Rule == "" {
		cfg, err := s.rateRepo.FindDepositConfig(ctx, req.CampgroundID)
		if err != nil {
			return DepositResult{}, fmt.Errorf("load deposit config: %w", err)
		}
		in = deposit.FromConfig(in, cfg)
	}

	due, err := deposit.Due(in)
	if err != nil {
		return DepositResult{}, err
	}
	return DepositResult{Rule: in.Rule, DepositDueCents: due}, nil
}
