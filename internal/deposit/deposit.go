// Package deposit derives the deposit owed on a reservation.
package deposit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

var ErrUnknownRule = errors.New("unknown deposit rule")

type Input struct {
	TotalCents int64
	FeesCents  int64
	Nights     int
	Arrival    time.Time
	// AsOf is the evaluation date for the proximity override.
	AsOf time.Time

	Rule       models.DepositRule
	Percentage float64
	// FullWithinDays escalates the deposit to the full total when arrival
	// is this many days away or fewer.
	FullWithinDays *int
}

// FromConfig fills the rule fields of an Input from a campground's config.
// A nil config means no deposit.
func FromConfig(in Input, cfg *models.DepositConfig) Input {
	if cfg == nil {
		in.Rule = models.DepositNone
		return in
	}
	in.Rule = cfg.Rule
	in.Percentage = cfg.Percentage
	in.FullWithinDays = cfg.FullWithinDays
	return in
}

// Due returns the deposit owed, always within [0, total].
func Due(in Input) (int64, error) {
	total := in.TotalCents
	if total <= 0 {
		if !in.Rule.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRule, in.Rule)
		}
		return 0, nil
	}

	if in.FullWithinDays != nil && !in.Arrival.IsZero() && !in.AsOf.IsZero() {
		if models.NightsBetween(in.AsOf, in.Arrival) <= *in.FullWithinDays {
			if !in.Rule.Valid() {
				return 0, fmt.Errorf("%w: %q", ErrUnknownRule, in.Rule)
			}
			return total, nil
		}
	}

	nights := int64(in.Nights)
	if nights < 1 {
		nights = 1
	}

	var due int64
	switch in.Rule {
	case models.DepositNone:
		due = 0
	case models.DepositFull:
		due = total
	case models.DepositHalf:
		due = total / 2
	case models.DepositFirstNight:
		due = total / nights
	case models.DepositFirstNightFees:
		fees := clamp(in.FeesCents, 0, total)
		due = (total-fees)/nights + fees
	case models.DepositPercentage:
		due = int64(math.Round(float64(total) * in.Percentage / 100))
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRule, in.Rule)
	}

	return clamp(due, 0, total), nil
}

// Shortfall is how much more must be paid to cover the deposit.
func Shortfall(paid, due int64) int64 {
	if paid >= due {
		return 0
	}
	return due - paid
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
