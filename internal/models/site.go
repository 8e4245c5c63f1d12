package models

import "time"

type SiteType string

const (
	SiteTypeRV       SiteType = "rv"
	SiteTypeTent     SiteType = "tent"
	SiteTypeCabin    SiteType = "cabin"
	SiteTypeGroup    SiteType = "group"
	SiteTypeGlamping SiteType = "glamping"
)

type SiteStatus string

const (
	SiteAvailable   SiteStatus = "available"
	SiteOccupied    SiteStatus = "occupied"
	SiteMaintenance SiteStatus = "maintenance"
)

// Site is synced from park configuration and never written by the booking path.
type Site struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CampgroundID uint       `gorm:"not null;index" json:"campground_id"`
	Name         string     `gorm:"not null" json:"name"`
	SiteClassID  uint       `gorm:"not null;index" json:"site_class_id"`
	Type         SiteType   `gorm:"type:varchar(20);not null" json:"type"`
	Status       SiteStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	MaxRigLength int        `json:"max_rig_length"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	SiteClass *SiteClass `gorm:"foreignKey:SiteClassID" json:"site_class,omitempty"`
}

// SiteClass is the pricing and capacity template shared by sites.
type SiteClass struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CampgroundID     uint      `gorm:"not null;index" json:"campground_id"`
	Name             string    `gorm:"not null" json:"name"`
	DefaultRateCents int64     `gorm:"not null" json:"default_rate_cents"`
	MaxOccupancy     int       `gorm:"not null" json:"max_occupancy"`
	GLCode           string    `json:"gl_code"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MaintenanceBlock takes a site out of service for [StartDate, EndDate).
type MaintenanceBlock struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampgroundID uint      `gorm:"not null;index" json:"campground_id"`
	SiteID       uint      `gorm:"not null;index" json:"site_id"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
