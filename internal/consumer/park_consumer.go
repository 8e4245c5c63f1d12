package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KeySite             = "park.site"
	KeySiteClass        = "park.site_class"
	KeyRatePlan         = "park.rate_plan"
	KeyPricingRule      = "park.pricing_rule"
	KeyDepositConfig    = "park.deposit_config"
	KeyMaintenanceBlock = "park.maintenance_block"
)

var (
	errUnknownKey = errors.New("unknown routing key")
	errBadPayload = errors.New("malformed payload")
)

// envelope is the part of every park message the consumer reads before
// decoding the entity itself.
type envelope struct {
	Deleted bool `json:"deleted"`
}

// ParkConsumer mirrors park configuration (sites, classes, rates, deposit
// policy and maintenance windows) into the local reservation DB.
type ParkConsumer struct {
	db *gorm.DB
}

func NewParkConsumer(db *gorm.DB) *ParkConsumer {
	return &ParkConsumer{db: db}
}

// Start listens for messages until the delivery channel closes.
func (pc *ParkConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		log.Println("[ParkConsumer] channel closed, stopping consumer")
	}()
}

func (pc *ParkConsumer) handleMessage(msg amqp.Delivery) {
	err := pc.Apply(msg.RoutingKey, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errUnknownKey), errors.Is(err, errBadPayload):
		log.Printf("[ParkConsumer] dropping %s: %v", msg.RoutingKey, err)
		msg.Nack(false, false)
	default:
		log.Printf("[ParkConsumer] failed to apply %s: %v", msg.RoutingKey, err)
		msg.Nack(false, true) // requeue
	}
}

// Apply upserts, or deletes when the payload says so, the entity carried
// by one park message.
func (pc *ParkConsumer) Apply(routingKey string, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}

	switch routingKey {
	case KeySite:
		return mirror(pc.db, body, env.Deleted, []string{"id"},
			[]string{"campground_id", "name", "site_class_id", "type", "status", "max_rig_length", "updated_at"},
			func(s *models.Site) { s.SiteClass = nil })
	case KeySiteClass:
		return mirror(pc.db, body, env.Deleted, []string{"id"},
			[]string{"campground_id", "name", "default_rate_cents", "max_occupancy", "gl_code", "updated_at"},
			func(*models.SiteClass) {})
	case KeyRatePlan:
		return mirror(pc.db, body, env.Deleted, []string{"id"},
			[]string{"campground_id", "site_class_id", "name", "start_date", "end_date", "amount_cents", "rate_type", "priority", "active", "updated_at"},
			func(p *models.RatePlan) {
				p.StartDate = dateOnly(p.StartDate)
				p.EndDate = dateOnly(p.EndDate)
			})
	case KeyPricingRule:
		return mirror(pc.db, body, env.Deleted, []string{"id"},
			[]string{"campground_id", "site_class_id", "name", "type", "adjustment_type", "adjustment", "days_of_week", "start_date", "end_date", "min_occupancy_pct", "active", "updated_at"},
			func(r *models.PricingRule) {
				r.StartDate = dateOnly(r.StartDate)
				r.EndDate = dateOnly(r.EndDate)
			})
	case KeyDepositConfig:
		return mirror(pc.db, body, env.Deleted, []string{"campground_id"},
			[]string{"rule", "percentage", "full_within_days", "updated_at"},
			func(*models.DepositConfig) {})
	case KeyMaintenanceBlock:
		return mirror(pc.db, body, env.Deleted, []string{"id"},
			[]string{"campground_id", "site_id", "start_date", "end_date", "reason", "updated_at"},
			func(b *models.MaintenanceBlock) {
				b.StartDate = models.DateOnly(b.StartDate)
				b.EndDate = models.DateOnly(b.EndDate)
			})
	default:
		return fmt.Errorf("%w: %s", errUnknownKey, routingKey)
	}
}

// mirror decodes body into T and either deletes it by primary key or upserts
// it, updating columns on a key conflict.
func mirror[T any](db *gorm.DB, body []byte, deleted bool, keys, columns []string, normalize func(*T)) error {
	var entity T
	if err := json.Unmarshal(body, &entity); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	normalize(&entity)

	if deleted {
		err := db.Delete(&entity).Error
		if errors.Is(err, gorm.ErrMissingWhereClause) {
			return fmt.Errorf("%w: delete without a key", errBadPayload)
		}
		return err
	}

	conflict := make([]clause.Column, len(keys))
	for i, k := range keys {
		conflict[i] = clause.Column{Name: k}
	}
	return db.Clauses(clause.OnConflict{
		Columns:   conflict,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&entity).Error
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.DateOnly(*t)
	return &d
}
