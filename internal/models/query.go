package models

import "time"

type SortOrder string

const (
	SortArrivalAsc  SortOrder = "arrival_asc"
	SortArrivalDesc SortOrder = "arrival_desc"
	SortCreatedDesc SortOrder = "created_desc"
)

// ReservationQuery filters a reservation listing. Zero values mean "no filter".
type ReservationQuery struct {
	CampgroundID uint
	Search       string
	Statuses     []ReservationStatus
	SiteID       uint
	// From and To select stays that overlap [From, To).
	From  *time.Time
	To    *time.Time
	IDs   []uint
	Sort  SortOrder
	Limit int
}
