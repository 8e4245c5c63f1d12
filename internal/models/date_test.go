package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly_LocalZoneKeepsStoredDay(t *testing.T) {
	stored := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	ny := time.FixedZone("EDT", -4*3600)

	assert.Equal(t, stored, DateOnly(stored.In(ny)))
	assert.Equal(t, stored, DateOnly(stored.Add(23*time.Hour)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2023-02-29")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestNightsBetween(t *testing.T) {
	a := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NightsBetween(a, a.AddDate(0, 0, 3)))
	assert.Equal(t, 0, NightsBetween(a, a))
}

func TestReservationStatus_Blocking(t *testing.T) {
	for _, s := range BlockingStatuses {
		assert.True(t, s.Blocking(), s)
	}
	assert.False(t, StatusCheckedOut.Blocking())
	assert.False(t, StatusCancelled.Blocking())
	assert.False(t, ReservationStatus("archived").Valid())
}
