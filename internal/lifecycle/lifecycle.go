// Package lifecycle holds the reservation state machine and the rules that
// guard edits to a reservation's money fields.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

var (
	ErrInvalidTransition             = errors.New("invalid status transition")
	ErrOverrideJustificationRequired = errors.New("manual override requires a reason and an approver")
)

var transitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusCheckedIn, models.StatusCancelled},
	models.StatusCheckedIn:  {models.StatusCheckedOut, models.StatusCancelled},
	models.StatusCheckedOut: {},
	models.StatusCancelled:  {},
}

// AllowedTargets lists the statuses reachable from the given one.
func AllowedTargets(from models.ReservationStatus) []models.ReservationStatus {
	targets := transitions[from]
	out := make([]models.ReservationStatus, len(targets))
	copy(out, targets)
	return out
}

// SourcesOf lists the statuses that may move to the given one.
func SourcesOf(to models.ReservationStatus) []models.ReservationStatus {
	var out []models.ReservationStatus
	for _, from := range []models.ReservationStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCheckedIn,
		models.StatusCheckedOut, models.StatusCancelled,
	} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

func CanTransition(from, to models.ReservationStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func Terminal(s models.ReservationStatus) bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// TransitionError explains a rejected status change.
type TransitionError struct {
	From models.ReservationStatus
	To   models.ReservationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Apply moves r to the target status and stamps the matching timestamp.
// r is left untouched when the transition is not allowed.
func Apply(r *models.Reservation, to models.ReservationStatus, now time.Time) error {
	if !CanTransition(r.Status, to) {
		return &TransitionError{From: r.Status, To: to}
	}
	r.Status = to
	ts := now.UTC()
	switch to {
	case models.StatusCheckedIn:
		r.CheckedInAt = &ts
	case models.StatusCheckedOut:
		r.CheckedOutAt = &ts
	case models.StatusCancelled:
		r.CancelledAt = &ts
	}
	return nil
}

// DerivePaymentStatus is the only source of a reservation's payment status.
func DerivePaymentStatus(paid, total int64) models.PaymentStatus {
	switch {
	case paid >= total:
		return models.PaymentPaid
	case paid > 0:
		return models.PaymentPartial
	default:
		return models.PaymentUnpaid
	}
}

// RecomputeTotals refreshes balance and payment status from total and paid.
func RecomputeTotals(r *models.Reservation) {
	r.BalanceCents = r.TotalCents - r.PaidCents
	if r.BalanceCents < 0 {
		r.BalanceCents = 0
	}
	r.PaymentStatus = DerivePaymentStatus(r.PaidCents, r.TotalCents)
}

// Override is the justification recorded with a manual money edit.
type Override struct {
	Reason     string
	ApprovedBy string
}

func (o Override) Valid() bool {
	return strings.TrimSpace(o.Reason) != "" && strings.TrimSpace(o.ApprovedBy) != ""
}

// RequireOverrideJustification rejects a money edit without both a reason
// and an approver, and records them on r otherwise.
func RequireOverrideJustification(r *models.Reservation, o Override, now time.Time) error {
	if !o.Valid() {
		return ErrOverrideJustificationRequired
	}
	ts := now.UTC()
	r.OverrideReason = strings.TrimSpace(o.Reason)
	r.OverrideApprovedBy = strings.TrimSpace(o.ApprovedBy)
	r.OverriddenAt = &ts
	return nil
}
