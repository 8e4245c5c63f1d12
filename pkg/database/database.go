package database

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/config"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in migration order.
var Models = []any{
	&models.SiteClass{},
	&models.Site{},
	&models.MaintenanceBlock{},
	&models.RatePlan{},
	&models.PricingRule{},
	&models.DepositConfig{},
	&models.Hold{},
	&models.Reservation{},
}

// NewDB opens the configured database and migrates the schema.
func NewDB(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("failed to create sqlite directory: %v", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := Open(dialector)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("failed to get sql.DB: %v", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db
}

// Open connects with the given dialector and migrates the schema.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedisClient returns nil when url is empty.
func NewRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[Redis] %q is not a redis:// URL, using it as an address", url)
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts)
}
