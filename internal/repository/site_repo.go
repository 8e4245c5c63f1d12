package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error)
	ListByCampground(ctx context.Context, campgroundID uint) ([]models.Site, error)
	ListCampgroundIDs(ctx context.Context) ([]uint, error)
	FindMaintenanceBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error)
	FindMaintenanceByCampground(ctx context.Context, campgroundID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error)
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error) {
	var site models.Site
	if err := conn(ctx, r.db, tx).Preload("SiteClass").First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// FindByIDForUpdate acquires a row-level lock on the site within the given
// transaction, serializing writers that target the same site.
func (r *siteRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error) {
	var site models.Site
	if err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) ListByCampground(ctx context.Context, campgroundID uint) ([]models.Site, error) {
	var sites []models.Site
	err := r.db.WithContext(ctx).
		Preload("SiteClass").
		Where("campground_id = ?", campgroundID).
		Order("id ASC").
		Find(&sites).Error
	return sites, err
}

func (r *siteRepository) ListCampgroundIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Site{}).
		Distinct("campground_id").
		Order("campground_id ASC").
		Pluck("campground_id", &ids).Error
	return ids, err
}

func (r *siteRepository) FindMaintenanceBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error) {
	var blocks []models.MaintenanceBlock
	err := conn(ctx, r.db, tx).
		Where("site_id = ? AND start_date < ? AND end_date > ?", siteID, departure, arrival).
		Order("start_date ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *siteRepository) FindMaintenanceByCampground(ctx context.Context, campgroundID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error) {
	var blocks []models.MaintenanceBlock
	err := r.db.WithContext(ctx).
		Where("campground_id = ? AND start_date < ? AND end_date > ?", campgroundID, departure, arrival).
		Order("site_id ASC, start_date ASC").
		Find(&blocks).Error
	return blocks, err
}
