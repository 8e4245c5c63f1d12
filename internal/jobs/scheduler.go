// Package jobs runs the service's periodic maintenance work.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/robfig/cron/v3"
)

const jobTimeout = time.Minute

type HoldExpirer interface {
	ExpireHolds(ctx context.Context) ([]models.Hold, error)
}

type UnderpaidNotifier interface {
	NotifyUnderpaid(ctx context.Context) (int, error)
}

// Scheduler sweeps expired holds and flags reservations whose payments
// fall short of their deposit.
type Scheduler struct {
	cron      *cron.Cron
	holds     HoldExpirer
	underpaid UnderpaidNotifier
}

func NewScheduler(holds HoldExpirer, underpaid UnderpaidNotifier) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		holds:     holds,
		underpaid: underpaid,
	}
}

// Start registers both jobs and starts the cron loop. An empty schedule
// disables its job.
func (s *Scheduler) Start(holdSweep, underpaidScan string) error {
	if holdSweep != "" {
		if _, err := s.cron.AddFunc(holdSweep, s.SweepHolds); err != nil {
			return fmt.Errorf("schedule hold sweep %q: %w", holdSweep, err)
		}
	}
	if underpaidScan != "" {
		if _, err := s.cron.AddFunc(underpaidScan, s.ScanUnderpaid); err != nil {
			return fmt.Errorf("schedule underpaid scan %q: %w", underpaidScan, err)
		}
	}
	s.cron.Start()
	log.Printf("[Scheduler] started with %d jobs", len(s.cron.Entries()))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] stopped")
}

func (s *Scheduler) SweepHolds() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	expired, err := s.holds.ExpireHolds(ctx)
	if err != nil {
		log.Printf("[Scheduler] hold sweep failed: %v", err)
		return
	}
	if len(expired) > 0 {
		log.Printf("[Scheduler] expired %d holds", len(expired))
	}
}

func (s *Scheduler) ScanUnderpaid() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.underpaid.NotifyUnderpaid(ctx)
	if err != nil {
		log.Printf("[Scheduler] underpaid scan failed: %v", err)
		return
	}
	log.Printf("[Scheduler] %d reservations below their deposit", n)
}
