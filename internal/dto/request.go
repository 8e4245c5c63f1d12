package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

type StayRequest struct {
	SiteID    uint   `json:"site_id" validate:"required"`
	Arrival   string `json:"arrival_date" validate:"required,datetime=2006-01-02"`
	Departure string `json:"departure_date" validate:"required,datetime=2006-01-02"`
}

// Dates parses the stay. Format is checked by validation first.
func (r StayRequest) Dates() (time.Time, time.Time, error) {
	return parseStay(r.Arrival, r.Departure)
}

type OverlapCheckRequest struct {
	StayRequest
	ExcludeReservationID uint `json:"exclude_reservation_id"`
}

type HoldRequest struct {
	StayRequest
}

type QuoteRequest struct {
	StayRequest
}

type DraftRequest struct {
	SiteID      uint   `json:"site_id" validate:"required"`
	WindowStart string `json:"window_start" validate:"required,datetime=2006-01-02"`
	NumDays     int    `json:"num_days" validate:"required,gt=0,lte=366"`
	StartIndex  int    `json:"start_index" validate:"gte=0"`
	EndIndex    int    `json:"end_index" validate:"gte=0"`
}

type MatchSitesRequest struct {
	Arrival   string `json:"arrival_date" validate:"required,datetime=2006-01-02"`
	Departure string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Adults    int    `json:"adults" validate:"gte=0"`
	Children  int    `json:"children" validate:"gte=0"`
	SiteType  string `json:"site_type" validate:"omitempty,oneof=rv tent cabin group glamping"`
	RigLength int    `json:"rig_length" validate:"gte=0"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
}

func (r MatchSitesRequest) Dates() (time.Time, time.Time, error) {
	return parseStay(r.Arrival, r.Departure)
}

type RigRequest struct {
	Type         string `json:"type"`
	Length       int    `json:"length" validate:"gte=0"`
	LicensePlate string `json:"license_plate"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

func (r *RigRequest) ToModel() models.RigDetails {
	if r == nil {
		return models.RigDetails{}
	}
	return models.RigDetails{Type: r.Type, Length: r.Length, LicensePlate: r.LicensePlate, Make: r.Make, Model: r.Model}
}

type CreateReservationRequest struct {
	CampgroundID uint   `json:"campground_id" validate:"required"`
	SiteID       uint   `json:"site_id" validate:"required"`
	GuestID      uint   `json:"guest_id" validate:"required"`
	Arrival      string `json:"arrival_date" validate:"required,datetime=2006-01-02"`
	Departure    string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Adults       int    `json:"adults" validate:"gte=1"`
	Children     int    `json:"children" validate:"gte=0"`
	Pets         int    `json:"pets" validate:"gte=0"`
	Status       string `json:"status" validate:"omitempty,oneof=pending confirmed"`

	FeesCents        int64  `json:"fees_cents" validate:"gte=0"`
	TaxesCents       int64  `json:"taxes_cents" validate:"gte=0"`
	DiscountsCents   int64  `json:"discounts_cents" validate:"gte=0"`
	PaidCents        int64  `json:"paid_cents" validate:"gte=0"`
	ManualTotalCents *int64 `json:"manual_total_cents" validate:"omitempty,gte=0"`

	PromoCode      string      `json:"promo_code"`
	Source         string      `json:"source"`
	Notes          string      `json:"notes"`
	Rig            *RigRequest `json:"rig"`
	HoldID         string      `json:"hold_id" validate:"omitempty,uuid"`
	GroupID        *uint       `json:"group_id"`
	IsGroupPrimary bool        `json:"is_group_primary"`
}

func (r CreateReservationRequest) Dates() (time.Time, time.Time, error) {
	return parseStay(r.Arrival, r.Departure)
}

type UpdateReservationRequest struct {
	Status    *string `json:"status" validate:"omitempty,oneof=pending confirmed checked_in checked_out cancelled"`
	SiteID    *uint   `json:"site_id" validate:"omitempty,gt=0"`
	Arrival   *string `json:"arrival_date" validate:"omitempty,datetime=2006-01-02"`
	Departure *string `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	Adults    *int    `json:"adults" validate:"omitempty,gte=1"`
	Children  *int    `json:"children" validate:"omitempty,gte=0"`
	Pets      *int    `json:"pets" validate:"omitempty,gte=0"`

	TotalCents     *int64  `json:"total_cents" validate:"omitempty,gte=0"`
	FeesCents      *int64  `json:"fees_cents" validate:"omitempty,gte=0"`
	TaxesCents     *int64  `json:"taxes_cents" validate:"omitempty,gte=0"`
	DiscountsCents *int64  `json:"discounts_cents" validate:"omitempty,gte=0"`
	PaymentStatus  *string `json:"payment_status" validate:"omitempty,oneof=unpaid partial paid"`

	PromoCode *string     `json:"promo_code"`
	Source    *string     `json:"source"`
	Notes     *string     `json:"notes"`
	Rig       *RigRequest `json:"rig"`

	OverrideReason     string `json:"override_reason"`
	OverrideApprovedBy string `json:"override_approved_by"`
}

type PaymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

type BulkStatusRequest struct {
	IDs            []uint   `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
	Status         string   `json:"status" validate:"required,oneof=pending confirmed checked_in checked_out cancelled"`
	AllowedSources []string `json:"allowed_sources" validate:"omitempty,dive,oneof=pending confirmed checked_in checked_out cancelled"`
}

type DepositCalculateRequest struct {
	CampgroundID   uint    `json:"campground_id"`
	TotalCents     int64   `json:"total_cents" validate:"gte=0"`
	FeesCents      int64   `json:"fees_cents" validate:"gte=0"`
	Nights         int     `json:"nights" validate:"gte=0"`
	Arrival        string  `json:"arrival_date" validate:"omitempty,datetime=2006-01-02"`
	Rule           string  `json:"rule" validate:"omitempty,oneof=none full half first_night first_night_fees percentage"`
	Percentage     float64 `json:"percentage" validate:"gte=0,lte=100"`
	FullWithinDays *int    `json:"full_within_days" validate:"omitempty,gte=0"`
}

type ForecastRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

func (r ForecastRequest) Dates() (time.Time, time.Time, error) {
	return parseStay(r.From, r.To)
}

func parseStay(arrival, departure string) (time.Time, time.Time, error) {
	a, err := models.ParseDate(arrival)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	d, err := models.ParseDate(departure)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return a, d, nil
}
