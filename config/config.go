package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	HoldPolicyAdvisory = "advisory"
	HoldPolicyStrict   = "strict"
)

type Config struct {
	ServerPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RabbitURL string
	RedisURL  string

	HoldTTL    time.Duration
	HoldPolicy string

	HoldSweepSchedule     string
	UnderpaidScanSchedule string

	BulkConcurrency int
}

func Load() *Config {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] could not load .env: %v", err)
	}

	cfg := &Config{
		ServerPort:            getEnv("SERVER_PORT", "8082"),
		DBDriver:              getEnv("DB_DRIVER", "postgres"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBUser:                getEnv("DB_USER", "postgres"),
		DBPassword:            getEnv("DB_PASSWORD", "postgres"),
		DBName:                getEnv("DB_NAME", "reservation_db"),
		SQLitePath:            getEnv("SQLITE_PATH", "data/reservations.db"),
		RabbitURL:             getEnv("RABBITMQ_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		HoldTTL:               getDuration("HOLD_TTL", 10*time.Minute),
		HoldPolicy:            getEnv("HOLD_POLICY", HoldPolicyAdvisory),
		HoldSweepSchedule:     getEnv("HOLD_SWEEP_SCHEDULE", "@every 1m"),
		UnderpaidScanSchedule: getEnv("UNDERPAID_SCAN_SCHEDULE", "@every 1h"),
		BulkConcurrency:       getInt("BULK_CONCURRENCY", 4),
	}

	if cfg.HoldPolicy != HoldPolicyAdvisory && cfg.HoldPolicy != HoldPolicyStrict {
		log.Printf("[Config] unknown HOLD_POLICY %q, using %q", cfg.HoldPolicy, HoldPolicyAdvisory)
		cfg.HoldPolicy = HoldPolicyAdvisory
	}
	if cfg.BulkConcurrency < 1 {
		cfg.BulkConcurrency = 1
	}

	return cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// StrictHolds reports whether reservation creation requires a live hold.
func (c *Config) StrictHolds() bool {
	return c.HoldPolicy == HoldPolicyStrict
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[Config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
