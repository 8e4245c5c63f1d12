// Package pricing computes the price of a candidate stay from a site class
// default rate, seasonal rate plans and pricing rules.
//
// Everything is evaluated one night at a time and is a pure function of its
// input: the same Input always yields the same Quote.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

var ErrQuoteUnavailable = errors.New("quote unavailable")

const (
	nightsPerWeek  = 7
	nightsPerMonth = 30
)

type Input struct {
	Stay             availability.Interval
	SiteClassID      uint
	DefaultRateCents int64
	Plans            []models.RatePlan
	Rules            []models.PricingRule
	// OccupancyPct is the campground occupancy (0-100) keyed by night date.
	OccupancyPct map[time.Time]float64
}

type NightPrice struct {
	Date       time.Time `json:"date"`
	BaseCents  int64     `json:"base_cents"`
	DeltaCents int64     `json:"delta_cents"`
	RatePlan   string    `json:"rate_plan,omitempty"`
	Rules      []string  `json:"rules,omitempty"`
}

type Quote struct {
	Nights            int          `json:"nights"`
	BaseSubtotalCents int64        `json:"base_subtotal_cents"`
	RulesDeltaCents   int64        `json:"rules_delta_cents"`
	TotalCents        int64        `json:"total_cents"`
	AppliedRules      []string     `json:"applied_rules"`
	Breakdown         []NightPrice `json:"breakdown"`
}

// Calculate prices every night of the stay.
func Calculate(in Input) (Quote, error) {
	nights := in.Stay.Nights()
	if nights < 1 {
		return Quote{}, availability.ErrInvalidDateRange
	}

	plans := applicablePlans(in.Plans, in.SiteClassID)
	rules, err := applicableRules(in.Rules, in.SiteClassID)
	if err != nil {
		return Quote{}, err
	}

	breakdown := make([]NightPrice, nights)
	assigned := make([]*models.RatePlan, nights)
	for i := range breakdown {
		date := in.Stay.Arrival.AddDate(0, 0, i)
		breakdown[i].Date = date
		assigned[i] = planFor(plans, date)
	}

	if err := priceBase(breakdown, assigned, in.DefaultRateCents); err != nil {
		return Quote{}, err
	}

	q := Quote{Nights: nights, AppliedRules: []string{}, Breakdown: breakdown}
	seen := make(map[string]bool)
	for i := range breakdown {
		night := &breakdown[i]
		for _, r := range rules {
			if !r.matches(night.Date, in.OccupancyPct) {
				continue
			}
			night.DeltaCents += r.delta(night.BaseCents)
			night.Rules = append(night.Rules, r.Name)
			if !seen[r.Name] {
				seen[r.Name] = true
				q.AppliedRules = append(q.AppliedRules, r.Name)
			}
		}
		// a discount never takes a night below zero
		if night.BaseCents+night.DeltaCents < 0 {
			night.DeltaCents = -night.BaseCents
		}
		q.BaseSubtotalCents += night.BaseCents
		q.RulesDeltaCents += night.DeltaCents
	}
	q.TotalCents = q.BaseSubtotalCents + q.RulesDeltaCents
	return q, nil
}

func applicablePlans(all []models.RatePlan, siteClassID uint) []models.RatePlan {
	plans := make([]models.RatePlan, 0, len(all))
	for _, p := range all {
		if !p.Active || p.AmountCents < 0 {
			continue
		}
		if p.SiteClassID != nil && *p.SiteClassID != siteClassID {
			continue
		}
		plans = append(plans, p)
	}
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if (a.SiteClassID != nil) != (b.SiteClassID != nil) {
			return a.SiteClassID != nil
		}
		return a.ID < b.ID
	})
	return plans
}

func planFor(plans []models.RatePlan, date time.Time) *models.RatePlan {
	for i := range plans {
		if inWindow(plans[i].StartDate, plans[i].EndDate, date) {
			return &plans[i]
		}
	}
	return nil
}

// inWindow treats a window as half-open [start, end); a nil bound is open.
func inWindow(start, end *time.Time, date time.Time) bool {
	if start != nil && date.Before(models.DateOnly(*start)) {
		return false
	}
	if end != nil && !date.Before(models.DateOnly(*end)) {
		return false
	}
	return true
}

// priceBase fills BaseCents. Nightly plans charge their amount per covered
// night. Weekly and monthly plans charge their amount per full block of
// covered nights, spread across the block, and leftover nights fall back to
// the default rate.
func priceBase(breakdown []NightPrice, assigned []*models.RatePlan, defaultRate int64) error {
	covered := make(map[*models.RatePlan][]int)
	var order []*models.RatePlan
	for i, p := range assigned {
		if p == nil {
			continue
		}
		if _, ok := covered[p]; !ok {
			order = append(order, p)
		}
		covered[p] = append(covered[p], i)
	}

	useDefault := func(i int) error {
		if defaultRate <= 0 {
			return fmt.Errorf("%w: no rate configured for %s", ErrQuoteUnavailable, breakdown[i].Date.Format(models.DateLayout))
		}
		breakdown[i].BaseCents = defaultRate
		return nil
	}

	for i, p := range assigned {
		if p == nil {
			if err := useDefault(i); err != nil {
				return err
			}
		}
	}

	for _, plan := range order {
		idx := covered[plan]

		block := 1
		switch plan.RateType {
		case models.RateWeekly:
			block = nightsPerWeek
		case models.RateMonthly:
			block = nightsPerMonth
		}

		full := len(idx) / block * block
		for n, i := range idx {
			if n >= full {
				if err := useDefault(i); err != nil {
					return err
				}
				continue
			}
			share := plan.AmountCents / int64(block)
			if n%block == block-1 {
				share = plan.AmountCents - share*int64(block-1)
			}
			breakdown[i].BaseCents = share
			breakdown[i].RatePlan = plan.Name
		}
	}
	return nil
}

type rule struct {
	models.PricingRule
	days map[time.Weekday]bool
}

func applicableRules(all []models.PricingRule, siteClassID uint) ([]rule, error) {
	rules := make([]rule, 0, len(all))
	for _, r := range all {
		if !r.Active {
			continue
		}
		if r.SiteClassID != nil && *r.SiteClassID != siteClassID {
			continue
		}
		if r.AdjustmentType != models.AdjustFlat && r.AdjustmentType != models.AdjustPercent {
			return nil, fmt.Errorf("%w: rule %q has unknown adjustment type %q", ErrQuoteUnavailable, r.Name, r.AdjustmentType)
		}
		rr := rule{PricingRule: r}
		switch r.Type {
		case models.RuleDayOfWeek:
			days, err := ParseDaysOfWeek(r.DaysOfWeek)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q: %v", ErrQuoteUnavailable, r.Name, err)
			}
			rr.days = days
		case models.RuleSeasonal:
			if r.StartDate == nil && r.EndDate == nil {
				return nil, fmt.Errorf("%w: seasonal rule %q has no date window", ErrQuoteUnavailable, r.Name)
			}
		case models.RuleOccupancy:
		default:
			return nil, fmt.Errorf("%w: rule %q has unknown type %q", ErrQuoteUnavailable, r.Name, r.Type)
		}
		rules = append(rules, rr)
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func (r rule) matches(date time.Time, occupancy map[time.Time]float64) bool {
	if !inWindow(r.StartDate, r.EndDate, date) {
		return false
	}
	switch r.Type {
	case models.RuleDayOfWeek:
		return r.days[date.Weekday()]
	case models.RuleOccupancy:
		return occupancy[date] >= r.MinOccupancyPct
	}
	return true
}

func (r rule) delta(base int64) int64 {
	if r.AdjustmentType == models.AdjustPercent {
		return int64(math.Round(float64(base) * r.Adjustment / 100))
	}
	return int64(math.Round(r.Adjustment))
}

// ParseDaysOfWeek parses a comma separated list of weekday numbers, 0 = Sunday.
func ParseDaysOfWeek(s string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days[time.Weekday(n)] = true
	}
	if len(days) == 0 {
		return nil, errors.New("no weekdays given")
	}
	return days, nil
}
