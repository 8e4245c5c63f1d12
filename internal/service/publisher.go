package service

import (
	"errors"
	"log"
)

// Routing keys for outbound domain events.
const (
	KeyHoldCreated              = "hold.created"
	KeyHoldReleased             = "hold.released"
	KeyHoldExpired              = "hold.expired"
	KeyReservationCreated       = "reservation.created"
	KeyReservationUpdated       = "reservation.updated"
	KeyReservationStatusChanged = "reservation.status_changed"
	KeyReservationDeleted       = "reservation.deleted"
	KeyReservationUnderpaid     = "reservation.underpaid"
)

// EventPublisher delivers domain events. Implementations include the
// RabbitMQ publisher and the websocket hub.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// MultiPublisher fans an event out to every publisher.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(routingKey string, payload any) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publish is best effort: a lost notification never fails the write that
// caused it.
func publish(p EventPublisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("[Publisher] %s: %v", routingKey, err)
	}
}

type StatusChangedEvent struct {
	ReservationID uint   `json:"reservation_id"`
	CampgroundID  uint   `json:"campground_id"`
	SiteID        uint   `json:"site_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

type DeletedEvent struct {
	ReservationID uint `json:"reservation_id"`
}

type UnderpaidEvent struct {
	ReservationID   uint  `json:"reservation_id"`
	CampgroundID    uint  `json:"campground_id"`
	DepositDueCents int64 `json:"deposit_due_cents"`
	PaidCents       int64 `json:"paid_cents"`
	ShortfallCents  int64 `json:"shortfall_cents"`
}
