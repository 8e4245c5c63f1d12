package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
)

type HoldRepository interface {
	Create(ctx context.Context, tx *gorm.DB, h *models.Hold) error
	FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hold, error)
	FindActiveBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure, now time.Time) ([]models.Hold, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	DeleteExpired(ctx context.Context, now time.Time) ([]models.Hold, error)
}

type holdRepository struct {
	db *gorm.DB
}

func NewHoldRepository(db *gorm.DB) HoldRepository {
	return &holdRepository{db: db}
}

func (r *holdRepository) Create(ctx context.Context, tx *gorm.DB, h *models.Hold) error {
	return conn(ctx, r.db, tx).Create(h).Error
}

func (r *holdRepository) FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hold, error) {
	var h models.Hold
	if err := conn(ctx, r.db, tx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// FindActiveBySite returns unexpired holds on the site overlapping [arrival, departure).
func (r *holdRepository) FindActiveBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure, now time.Time) ([]models.Hold, error) {
	var holds []models.Hold
	err := conn(ctx, r.db, tx).
		Where("site_id = ? AND expires_at > ?", siteID, now).
		Where("arrival < ? AND departure > ?", departure, arrival).
		Order("created_at ASC").
		Find(&holds).Error
	return holds, err
}

func (r *holdRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := conn(ctx, r.db, tx).Where("id = ?", id).Delete(&models.Hold{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpired removes holds whose TTL has passed and returns them.
func (r *holdRepository) DeleteExpired(ctx context.Context, now time.Time) ([]models.Hold, error) {
	var expired []models.Hold
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", now).Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]string, len(expired))
		for i, h := range expired {
			ids[i] = h.ID
		}
		return tx.Where("id IN ?", ids).Delete(&models.Hold{}).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
