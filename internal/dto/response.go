package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lifecycle"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
)

type ReservationResponse struct {
	ID           uint                       `json:"id"`
	CampgroundID uint                       `json:"campground_id"`
	SiteID       uint                       `json:"site_id"`
	GuestID      uint                       `json:"guest_id"`
	Arrival      string                     `json:"arrival_date"`
	Departure    string                     `json:"departure_date"`
	Nights       int                        `json:"nights"`
	Adults       int                        `json:"adults"`
	Children     int                        `json:"children"`
	Pets         int                        `json:"pets"`
	Status       models.ReservationStatus   `json:"status"`
	NextStatuses []models.ReservationStatus `json:"allowed_transitions"`

	BaseSubtotalCents int64                `json:"base_subtotal_cents"`
	FeesCents         int64                `json:"fees_cents"`
	TaxesCents        int64                `json:"taxes_cents"`
	DiscountsCents    int64                `json:"discounts_cents"`
	TotalCents        int64                `json:"total_cents"`
	PaidCents         int64                `json:"paid_cents"`
	BalanceCents      int64                `json:"balance_cents"`
	PaymentStatus     models.PaymentStatus `json:"payment_status"`

	PromoCode      string            `json:"promo_code,omitempty"`
	Source         string            `json:"source,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Rig            models.RigDetails `json:"rig"`
	HoldID         *string           `json:"hold_id,omitempty"`
	GroupID        *uint             `json:"group_id,omitempty"`
	IsGroupPrimary bool              `json:"is_group_primary"`

	OverrideReason     string     `json:"override_reason,omitempty"`
	OverrideApprovedBy string     `json:"override_approved_by,omitempty"`
	OverriddenAt       *time.Time `json:"overridden_at,omitempty"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	DepositDueCents *int64         `json:"deposit_due_cents,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	Quote           *pricing.Quote `json:"quote,omitempty"`
}

type HoldResponse struct {
	ID           string    `json:"id"`
	CampgroundID uint      `json:"campground_id"`
	SiteID       uint      `json:"site_id"`
	Arrival      string    `json:"arrival_date"`
	Departure    string    `json:"departure_date"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type QuoteResponse struct {
	SiteID    uint   `json:"site_id"`
	Arrival   string `json:"arrival_date"`
	Departure string `json:"departure_date"`
	pricing.Quote
}

type UnderpaidResponse struct {
	Reservation     ReservationResponse `json:"reservation"`
	DepositDueCents int64               `json:"deposit_due_cents"`
	ShortfallCents  int64               `json:"shortfall_cents"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID,
		CampgroundID:       r.CampgroundID,
		SiteID:             r.SiteID,
		GuestID:            r.GuestID,
		Arrival:            FormatDate(r.ArrivalDate),
		Departure:          FormatDate(r.DepartureDate),
		Nights:             r.Nights(),
		Adults:             r.Adults,
		Children:           r.Children,
		Pets:               r.Pets,
		Status:             r.Status,
		NextStatuses:       lifecycle.AllowedTargets(r.Status),
		BaseSubtotalCents:  r.BaseSubtotalCents,
		FeesCents:          r.FeesCents,
		TaxesCents:         r.TaxesCents,
		DiscountsCents:     r.DiscountsCents,
		TotalCents:         r.TotalCents,
		PaidCents:          r.PaidCents,
		BalanceCents:       r.BalanceCents,
		PaymentStatus:      r.PaymentStatus,
		PromoCode:          r.PromoCode,
		Source:             r.Source,
		Notes:              r.Notes,
		Rig:                r.Rig.Data(),
		HoldID:             r.HoldID,
		GroupID:            r.GroupID,
		IsGroupPrimary:     r.IsGroupPrimary,
		OverrideReason:     r.OverrideReason,
		OverrideApprovedBy: r.OverrideApprovedBy,
		OverriddenAt:       r.OverriddenAt,
		CheckedInAt:        r.CheckedInAt,
		CheckedOutAt:       r.CheckedOutAt,
		CancelledAt:        r.CancelledAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func ToHoldResponse(h *models.Hold) HoldResponse {
	return HoldResponse{
		ID:           h.ID,
		CampgroundID: h.CampgroundID,
		SiteID:       h.SiteID,
		Arrival:      FormatDate(h.Arrival),
		Departure:    FormatDate(h.Departure),
		CreatedAt:    h.CreatedAt,
		ExpiresAt:    h.ExpiresAt,
	}
}
