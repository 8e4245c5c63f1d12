package models

import "time"

type RateType string

const (
	RateNightly RateType = "nightly"
	RateWeekly  RateType = "weekly"
	RateMonthly RateType = "monthly"
)

// RatePlan is a seasonal or explicit rate that replaces the class default
// for the nights it covers. A nil window covers every night.
type RatePlan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CampgroundID uint       `gorm:"not null;index" json:"campground_id"`
	SiteClassID  *uint      `gorm:"index" json:"site_class_id,omitempty"`
	Name         string     `gorm:"not null" json:"name"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	AmountCents  int64      `gorm:"not null" json:"amount_cents"`
	RateType     RateType   `gorm:"type:varchar(20);not null;default:'nightly'" json:"rate_type"`
	Priority     int        `gorm:"not null;default:0" json:"priority"`
	Active       bool       `gorm:"not null" json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type PricingRuleType string

const (
	RuleDayOfWeek PricingRuleType = "day_of_week"
	RuleSeasonal  PricingRuleType = "seasonal"
	RuleOccupancy PricingRuleType = "occupancy"
)

type AdjustmentType string

const (
	AdjustFlat    AdjustmentType = "flat"
	AdjustPercent AdjustmentType = "percent"
)

// PricingRule adds a signed per-night adjustment on top of the base rate.
// Flat adjustments are cents per night; percent adjustments apply to the
// night's base amount.
type PricingRule struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CampgroundID    uint            `gorm:"not null;index" json:"campground_id"`
	SiteClassID     *uint           `gorm:"index" json:"site_class_id,omitempty"`
	Name            string          `gorm:"not null" json:"name"`
	Type            PricingRuleType `gorm:"type:varchar(20);not null" json:"type"`
	AdjustmentType  AdjustmentType  `gorm:"type:varchar(20);not null" json:"adjustment_type"`
	Adjustment      float64         `gorm:"not null" json:"adjustment"`
	DaysOfWeek      string          `json:"days_of_week,omitempty"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	MinOccupancyPct float64         `json:"min_occupancy_pct,omitempty"`
	Active          bool            `gorm:"not null" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DepositRule string

const (
	DepositNone           DepositRule = "none"
	DepositFull           DepositRule = "full"
	DepositHalf           DepositRule = "half"
	DepositFirstNight     DepositRule = "first_night"
	DepositFirstNightFees DepositRule = "first_night_fees"
	DepositPercentage     DepositRule = "percentage"
)

func (r DepositRule) Valid() bool {
	switch r {
	case DepositNone, DepositFull, DepositHalf, DepositFirstNight, DepositFirstNightFees, DepositPercentage:
		return true
	}
	return false
}

// DepositConfig is the per-campground deposit policy.
type DepositConfig struct {
	CampgroundID   uint        `gorm:"primaryKey;autoIncrement:false" json:"campground_id"`
	Rule           DepositRule `gorm:"type:varchar(30);not null;default:'none'" json:"rule"`
	Percentage     float64     `json:"percentage"`
	FullWithinDays *int        `json:"full_within_days,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
