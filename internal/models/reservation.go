package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
)

// BlockingStatuses occupy their site for the stay's nights.
var BlockingStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCheckedIn}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this status holds its site.
func (s ReservationStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCheckedIn
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// RigDetails describes the guest's vehicle or rig.
type RigDetails struct {
	Type         string `json:"type,omitempty"`
	Length       int    `json:"length,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
}

type Reservation struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	CampgroundID  uint              `gorm:"not null;index" json:"campground_id"`
	SiteID        uint              `gorm:"not null;index:idx_reservation_site_dates" json:"site_id"`
	GuestID       uint              `gorm:"not null;index" json:"guest_id"`
	ArrivalDate   time.Time         `gorm:"not null;index:idx_reservation_site_dates" json:"arrival_date"`
	DepartureDate time.Time         `gorm:"not null;index:idx_reservation_site_dates" json:"departure_date"`
	Adults        int               `gorm:"not null;default:1" json:"adults"`
	Children      int               `gorm:"not null;default:0" json:"children"`
	Pets          int               `gorm:"not null;default:0" json:"pets"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	BaseSubtotalCents int64         `gorm:"not null;default:0" json:"base_subtotal_cents"`
	FeesCents         int64         `gorm:"not null;default:0" json:"fees_cents"`
	TaxesCents        int64         `gorm:"not null;default:0" json:"taxes_cents"`
	DiscountsCents    int64         `gorm:"not null;default:0" json:"discounts_cents"`
	TotalCents        int64         `gorm:"not null;default:0" json:"total_cents"`
	PaidCents         int64         `gorm:"not null;default:0" json:"paid_cents"`
	BalanceCents      int64         `gorm:"not null;default:0" json:"balance_cents"`
	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`

	PromoCode      string                         `json:"promo_code,omitempty"`
	Source         string                         `json:"source,omitempty"`
	Rig            datatypes.JSONType[RigDetails] `json:"rig"`
	HoldID         *string                        `gorm:"type:varchar(36)" json:"hold_id,omitempty"`
	GroupID        *uint                          `gorm:"index" json:"group_id,omitempty"`
	IsGroupPrimary bool                           `json:"is_group_primary"`
	Notes          string                         `json:"notes,omitempty"`

	OverrideReason     string     `json:"override_reason,omitempty"`
	OverrideApprovedBy string     `json:"override_approved_by,omitempty"`
	OverriddenAt       *time.Time `json:"overridden_at,omitempty"`

	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Nights is the number of nights in [ArrivalDate, DepartureDate).
func (r *Reservation) Nights() int {
	return NightsBetween(r.ArrivalDate, r.DepartureDate)
}
