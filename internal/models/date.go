package models

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("dates must be formatted YYYY-MM-DD")

// DateOnly truncates t to midnight UTC of its UTC calendar date. Stored
// dates are UTC midnights, so drivers that return them in the local zone
// still map back to the same day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// NightsBetween counts whole nights in [arrival, departure).
func NightsBetween(arrival, departure time.Time) int {
	return int(DateOnly(departure).Sub(DateOnly(arrival)).Hours() / 24)
}
