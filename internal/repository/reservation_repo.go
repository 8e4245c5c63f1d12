package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	Save(ctx context.Context, tx *gorm.DB, r *models.Reservation) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Reservation, error)
	FindBlockingBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.Reservation, error)
	FindBlockingByCampground(ctx context.Context, campgroundID uint, arrival, departure *time.Time) ([]models.Reservation, error)
	FindOutstanding(ctx context.Context, campgroundID uint) ([]models.Reservation, error)
	List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return conn(ctx, r.db, tx).Create(res).Error
}

func (r *reservationRepository) Save(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return conn(ctx, r.db, tx).Save(res).Error
}

func (r *reservationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := conn(ctx, r.db, tx).Delete(&models.Reservation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := conn(ctx, r.db, tx).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if len(ids) == 0 {
		return reservations, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&reservations).Error
	return reservations, err
}

// FindBlockingBySite returns the site's pending, confirmed and checked-in
// stays that share a night with [arrival, departure).
func (r *reservationRepository) FindBlockingBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := conn(ctx, r.db, tx).
		Where("site_id = ? AND status IN ?", siteID, models.BlockingStatuses).
		Where("arrival_date < ? AND departure_date > ?", departure, arrival).
		Order("arrival_date ASC, id ASC").
		Find(&reservations).Error
	return reservations, err
}

// FindBlockingByCampground returns every blocking stay in the campground,
// optionally limited to those overlapping [arrival, departure).
func (r *reservationRepository) FindBlockingByCampground(ctx context.Context, campgroundID uint, arrival, departure *time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx).
		Where("campground_id = ? AND status IN ?", campgroundID, models.BlockingStatuses)
	if departure != nil {
		q = q.Where("arrival_date < ?", *departure)
	}
	if arrival != nil {
		q = q.Where("departure_date > ?", *arrival)
	}
	err := q.Order("site_id ASC, arrival_date ASC, id ASC").Find(&reservations).Error
	return reservations, err
}

// FindOutstanding returns live reservations that still carry a balance.
func (r *reservationRepository) FindOutstanding(ctx context.Context, campgroundID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("campground_id = ? AND status IN ? AND paid_cents < total_cents", campgroundID, models.BlockingStatuses).
		Order("arrival_date ASC, id ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error) {
	var reservations []models.Reservation
	db := r.db.WithContext(ctx).Where("campground_id = ?", q.CampgroundID)

	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.SiteID != 0 {
		db = db.Where("site_id = ?", q.SiteID)
	}
	if q.To != nil {
		db = db.Where("arrival_date < ?", *q.To)
	}
	if q.From != nil {
		db = db.Where("departure_date > ?", *q.From)
	}
	if len(q.IDs) > 0 {
		db = db.Where("id IN ?", q.IDs)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		cond := "LOWER(promo_code) LIKE ? OR LOWER(source) LIKE ? OR LOWER(notes) LIKE ?"
		args := []any{like, like, like}
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			cond += " OR id = ? OR guest_id = ?"
			args = append(args, id, id)
		}
		db = db.Where("("+cond+")", args...)
	}

	switch q.Sort {
	case models.SortArrivalDesc:
		db = db.Order("arrival_date DESC, id DESC")
	case models.SortCreatedDesc:
		db = db.Order("created_at DESC, id DESC")
	default:
		db = db.Order("arrival_date ASC, id ASC")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	err := db.Find(&reservations).Error
	return reservations, err
}
