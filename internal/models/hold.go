package models

import "time"

// Hold is a short-lived advisory claim on a site for [Arrival, Departure).
type Hold struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampgroundID uint      `gorm:"not null;index" json:"campground_id"`
	SiteID       uint      `gorm:"not null;index" json:"site_id"`
	Arrival      time.Time `gorm:"not null" json:"arrival_date"`
	Departure    time.Time `gorm:"not null" json:"departure_date"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
}

func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
