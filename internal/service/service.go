package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lock"
)

var (
	ErrSiteNotFound        = errors.New("site not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrHoldNotFound        = errors.New("hold not found")
	ErrUnavailable         = errors.New("site unavailable")
	ErrHoldRequired        = errors.New("a live hold matching this site and stay is required")
	ErrInvalidStatus       = errors.New("new reservations must be pending or confirmed")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// UnavailableError explains why a hold could not be granted.
type UnavailableError struct {
	Reasons []string
}

func (e *UnavailableError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrUnavailable.Error()
	}
	return ErrUnavailable.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

const lockTimeout = 5 * time.Second

// lockSite takes the per-site write lock, giving up after lockTimeout.
func lockSite(ctx context.Context, locker lock.Locker, siteID uint) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	return locker.Acquire(lockCtx, lock.SiteKey(siteID))
}

func utcNow() time.Time {
	return time.Now().UTC()
}
