package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
)

// RateRepository reads the pricing and deposit configuration synced from
// park configuration.
type RateRepository interface {
	ListRatePlans(ctx context.Context, campgroundID uint) ([]models.RatePlan, error)
	ListPricingRules(ctx context.Context, campgroundID uint) ([]models.PricingRule, error)
	FindDepositConfig(ctx context.Context, campgroundID uint) (*models.DepositConfig, error)
}

type rateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) ListRatePlans(ctx context.Context, campgroundID uint) ([]models.RatePlan, error) {
	var plans []models.RatePlan
	err := r.db.WithContext(ctx).
		Where("campground_id = ? AND active = ?", campgroundID, true).
		Order("id ASC").
		Find(&plans).Error
	return plans, err
}

func (r *rateRepository) ListPricingRules(ctx context.Context, campgroundID uint) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.db.WithContext(ctx).
		Where("campground_id = ? AND active = ?", campgroundID, true).
		Order("id ASC").
		Find(&rules).Error
	return rules, err
}

// FindDepositConfig returns nil without error when the campground has no config.
func (r *rateRepository) FindDepositConfig(ctx context.Context, campgroundID uint) (*models.DepositConfig, error) {
	var cfg models.DepositConfig
	res := r.db.WithContext(ctx).Where("campground_id = ?", campgroundID).Limit(1).Find(&cfg)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &cfg, nil
}
