// Package availability detects conflicting stays on a site.
//
// Stays are half-open intervals [arrival, departure): the departure date is
// not occupied, so a guest leaving on the 3rd and another arriving on the
// 3rd do not conflict.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

var (
	ErrInvalidDateRange = errors.New("departure must be after arrival")
	ErrConflictDetected = errors.New("conflicting reservation on site")
)

type Interval struct {
	Arrival   time.Time `json:"arrival_date"`
	Departure time.Time `json:"departure_date"`
}

// NewInterval normalizes both ends to dates and rejects empty or inverted ranges.
func NewInterval(arrival, departure time.Time) (Interval, error) {
	iv := Interval{Arrival: models.DateOnly(arrival), Departure: models.DateOnly(departure)}
	if !iv.Departure.After(iv.Arrival) {
		return Interval{}, ErrInvalidDateRange
	}
	return iv, nil
}

func (iv Interval) Nights() int {
	return models.NightsBetween(iv.Arrival, iv.Departure)
}

// Contains reports whether the night starting on day falls inside the interval.
func (iv Interval) Contains(day time.Time) bool {
	d := models.DateOnly(day)
	return !d.Before(iv.Arrival) && d.Before(iv.Departure)
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s..%s", iv.Arrival.Format(models.DateLayout), iv.Departure.Format(models.DateLayout))
}

// Overlaps reports whether [a1,d1) and [a2,d2) share at least one night.
func Overlaps(a, b Interval) bool {
	return a.Arrival.Before(b.Departure) && b.Arrival.Before(a.Departure)
}

func reservationInterval(r *models.Reservation) Interval {
	return Interval{Arrival: models.DateOnly(r.ArrivalDate), Departure: models.DateOnly(r.DepartureDate)}
}

// Result is the outcome of a conflict check.
type Result struct {
	Conflict       bool     `json:"conflict"`
	Reasons        []string `json:"reasons"`
	ConflictingIDs []uint   `json:"conflicting_reservation_ids,omitempty"`
}

// Err returns a *ConflictError when the result holds a conflict, nil otherwise.
func (r Result) Err() error {
	if !r.Conflict {
		return nil
	}
	return &ConflictError{Reasons: r.Reasons, ReservationIDs: r.ConflictingIDs}
}

// ConflictError carries the reasons behind a rejected write.
type ConflictError struct {
	Reasons        []string
	ReservationIDs []uint
}

func (e *ConflictError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrConflictDetected.Error()
	}
	return ErrConflictDetected.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ConflictError) Unwrap() error {
	return ErrConflictDetected
}

// Check compares a candidate stay against the reservations and maintenance
// blocks of one site. Reservations that are checked out or cancelled, and
// the reservation with excludeID (an in-place edit), are ignored.
func Check(candidate Interval, reservations []models.Reservation, blocks []models.MaintenanceBlock, excludeID uint) Result {
	res := Result{Reasons: []string{}}

	for i := range reservations {
		r := &reservations[i]
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !r.Status.Blocking() {
			continue
		}
		existing := reservationInterval(r)
		if !Overlaps(candidate, existing) {
			continue
		}
		res.Conflict = true
		res.ConflictingIDs = append(res.ConflictingIDs, r.ID)
		res.Reasons = append(res.Reasons, fmt.Sprintf(
			"reservation #%d (%s) occupies %s, overlapping nights %s",
			r.ID, r.Status, existing, overlapWindow(candidate, existing),
		))
	}

	for _, b := range blocks {
		block := Interval{Arrival: models.DateOnly(b.StartDate), Departure: models.DateOnly(b.EndDate)}
		if !Overlaps(candidate, block) {
			continue
		}
		reason := b.Reason
		if reason == "" {
			reason = "maintenance"
		}
		res.Conflict = true
		res.Reasons = append(res.Reasons, fmt.Sprintf("site out of service %s: %s", block, reason))
	}

	return res
}

// CheckSite is Check plus the site's operational status: a site in
// maintenance conflicts with every stay.
func CheckSite(site *models.Site, candidate Interval, reservations []models.Reservation, blocks []models.MaintenanceBlock, excludeID uint) Result {
	res := Check(candidate, reservations, blocks, excludeID)
	if site.Status == models.SiteMaintenance {
		res.Conflict = true
		res.Reasons = append(res.Reasons, fmt.Sprintf("site #%d is out of service (status %s)", site.ID, site.Status))
	}
	return res
}

// CheckHolds reports active holds that overlap the candidate. Expired holds
// are ignored, as is the hold with excludeID.
func CheckHolds(candidate Interval, holds []models.Hold, excludeID string, now time.Time) Result {
	res := Result{Reasons: []string{}}
	for _, h := range holds {
		if h.ID == excludeID || h.Expired(now) {
			continue
		}
		held := Interval{Arrival: models.DateOnly(h.Arrival), Departure: models.DateOnly(h.Departure)}
		if !Overlaps(candidate, held) {
			continue
		}
		res.Conflict = true
		res.Reasons = append(res.Reasons, fmt.Sprintf(
			"site held for %s by another booking until %s",
			held, h.ExpiresAt.UTC().Format(time.RFC3339),
		))
	}
	return res
}

func overlapWindow(a, b Interval) Interval {
	w := a
	if b.Arrival.After(w.Arrival) {
		w.Arrival = b.Arrival
	}
	if b.Departure.Before(w.Departure) {
		w.Departure = b.Departure
	}
	return w
}

// Overlap is a pair of blocking reservations on one site that share nights.
type Overlap struct {
	SiteID     uint     `json:"site_id"`
	FirstID    uint     `json:"reservation_a_id"`
	First      Interval `json:"interval_a"`
	SecondID   uint     `json:"reservation_b_id"`
	Second     Interval `json:"interval_b"`
	SharedDays Interval `json:"overlap"`
}

// ListOverlaps enumerates every conflicting pair among the given
// reservations, ordered by site, then by the first stay's arrival.
func ListOverlaps(reservations []models.Reservation) []Overlap {
	bySite := make(map[uint][]*models.Reservation)
	for i := range reservations {
		r := &reservations[i]
		if !r.Status.Blocking() {
			continue
		}
		bySite[r.SiteID] = append(bySite[r.SiteID], r)
	}

	siteIDs := make([]uint, 0, len(bySite))
	for id := range bySite {
		siteIDs = append(siteIDs, id)
	}
	sort.Slice(siteIDs, func(i, j int) bool { return siteIDs[i] < siteIDs[j] })

	overlaps := []Overlap{}
	for _, siteID := range siteIDs {
		stays := bySite[siteID]
		sort.Slice(stays, func(i, j int) bool {
			if !stays[i].ArrivalDate.Equal(stays[j].ArrivalDate) {
				return stays[i].ArrivalDate.Before(stays[j].ArrivalDate)
			}
			return stays[i].ID < stays[j].ID
		})

		// sorted by arrival: once a later stay starts on or after this
		// one's departure, no further stay can overlap it
		for i := 0; i < len(stays); i++ {
			a := reservationInterval(stays[i])
			for j := i + 1; j < len(stays); j++ {
				b := reservationInterval(stays[j])
				if !b.Arrival.Before(a.Departure) {
					break
				}
				overlaps = append(overlaps, Overlap{
					SiteID:     siteID,
					FirstID:    stays[i].ID,
					First:      a,
					SecondID:   stays[j].ID,
					Second:     b,
					SharedDays: overlapWindow(a, b),
				})
			}
		}
	}
	return overlaps
}

// FilterAvailable returns the sites with no blocking reservation or
// maintenance block during the interval. Sites whose operational status is
// maintenance are never available.
func FilterAvailable(sites []models.Site, iv Interval, reservations []models.Reservation, blocks []models.MaintenanceBlock) []models.Site {
	resBySite := make(map[uint][]models.Reservation)
	for _, r := range reservations {
		resBySite[r.SiteID] = append(resBySite[r.SiteID], r)
	}
	blocksBySite := make(map[uint][]models.MaintenanceBlock)
	for _, b := range blocks {
		blocksBySite[b.SiteID] = append(blocksBySite[b.SiteID], b)
	}

	available := []models.Site{}
	for _, s := range sites {
		if s.Status == models.SiteMaintenance {
			continue
		}
		if Check(iv, resBySite[s.ID], blocksBySite[s.ID], 0).Conflict {
			continue
		}
		available = append(available, s)
	}
	return available
}
