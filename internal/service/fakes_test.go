package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
)

// --- Transactor ---

type noopTx struct{}

func (noopTx) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type mockTx struct {
	withinTxFn func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func (m *mockTx) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.withinTxFn(ctx, fn)
}

// --- Publisher ---

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// --- In-memory store backing every repository ---

type memStore struct {
	mu           sync.Mutex
	nextID       uint
	classes      map[uint]models.SiteClass
	sites        map[uint]models.Site
	blocks       []models.MaintenanceBlock
	reservations map[uint]models.Reservation
	holds        map[string]models.Hold
	plans        []models.RatePlan
	rules        []models.PricingRule
	deposits     map[uint]models.DepositConfig
	saveErr      map[uint]error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:       100,
		classes:      make(map[uint]models.SiteClass),
		sites:        make(map[uint]models.Site),
		reservations: make(map[uint]models.Reservation),
		holds:        make(map[string]models.Hold),
		deposits:     make(map[uint]models.DepositConfig),
		saveErr:      make(map[uint]error),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addClass(campgroundID uint, rateCents int64, maxOccupancy int) models.SiteClass {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.SiteClass{ID: m.id(), CampgroundID: campgroundID, Name: "class", DefaultRateCents: rateCents, MaxOccupancy: maxOccupancy}
	m.classes[c.ID] = c
	return c
}

func (m *memStore) addSite(campgroundID, classID uint, typ models.SiteType, maxRig int) models.Site {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := models.Site{ID: m.id(), CampgroundID: campgroundID, Name: "site", SiteClassID: classID, Type: typ, Status: models.SiteAvailable, MaxRigLength: maxRig}
	m.sites[s.ID] = s
	return s
}

func (m *memStore) addReservation(r models.Reservation) models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	}
	m.reservations[r.ID] = r
	return r
}

func (m *memStore) reservation(id uint) models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id]
}

func (m *memStore) holdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.holds)
}

func overlaps(a1, d1, a2, d2 time.Time) bool {
	return a1.Before(d2) && a2.Before(d1)
}

type memSites struct{ *memStore }
type memReservations struct{ *memStore }
type memHolds struct{ *memStore }
type memRates struct{ *memStore }

func (m memSites) withClass(s models.Site) models.Site {
	if c, ok := m.classes[s.SiteClassID]; ok {
		s.SiteClass = &c
	}
	return s
}

func (m memSites) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s = m.withClass(s)
	return &s, nil
}

func (m memSites) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Site, error) {
	return m.FindByID(ctx, tx, id)
}

func (m memSites) ListByCampground(ctx context.Context, campgroundID uint) ([]models.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Site
	for _, s := range m.sites {
		if s.CampgroundID == campgroundID {
			out = append(out, m.withClass(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memSites) ListCampgroundIDs(ctx context.Context) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uint]bool)
	var out []uint
	for _, s := range m.sites {
		if !seen[s.CampgroundID] {
			seen[s.CampgroundID] = true
			out = append(out, s.CampgroundID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m memSites) FindMaintenanceBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MaintenanceBlock
	for _, b := range m.blocks {
		if b.SiteID == siteID && overlaps(b.StartDate, b.EndDate, arrival, departure) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memSites) FindMaintenanceByCampground(ctx context.Context, campgroundID uint, arrival, departure time.Time) ([]models.MaintenanceBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MaintenanceBlock
	for _, b := range m.blocks {
		if b.CampgroundID == campgroundID && overlaps(b.StartDate, b.EndDate, arrival, departure) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memReservations) Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.reservations[r.ID] = *r
	return nil
}

func (m memReservations) Save(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[r.ID]; err != nil {
		return err
	}
	m.reservations[r.ID] = *r
	return nil
}

func (m memReservations) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.reservations, id)
	return nil
}

func (m memReservations) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m memReservations) FindByIDs(ctx context.Context, ids []uint) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, id := range ids {
		if r, ok := m.reservations[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReservations) FindBlockingBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure time.Time) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.SiteID == siteID && r.Status.Blocking() && overlaps(r.ArrivalDate, r.DepartureDate, arrival, departure) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReservations) FindBlockingByCampground(ctx context.Context, campgroundID uint, arrival, departure *time.Time) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.CampgroundID != campgroundID || !r.Status.Blocking() {
			continue
		}
		if departure != nil && !r.ArrivalDate.Before(*departure) {
			continue
		}
		if arrival != nil && !r.DepartureDate.After(*arrival) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m memReservations) FindOutstanding(ctx context.Context, campgroundID uint) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.CampgroundID == campgroundID && r.Status.Blocking() && r.PaidCents < r.TotalCents {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReservations) List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.CampgroundID == q.CampgroundID {
			out = append(out, r)
		}
	}
	return out, nil
}

// sorted must be called with mu held.
func (m *memStore) sorted() []models.Reservation {
	out := make([]models.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memHolds) Create(ctx context.Context, tx *gorm.DB, h *models.Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holds[h.ID] = *h
	return nil
}

func (m memHolds) FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &h, nil
}

func (m memHolds) FindActiveBySite(ctx context.Context, tx *gorm.DB, siteID uint, arrival, departure, now time.Time) ([]models.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Hold
	for _, h := range m.holds {
		if h.SiteID == siteID && h.ExpiresAt.After(now) && overlaps(h.Arrival, h.Departure, arrival, departure) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m memHolds) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holds[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.holds, id)
	return nil
}

func (m memHolds) DeleteExpired(ctx context.Context, now time.Time) ([]models.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Hold
	for id, h := range m.holds {
		if !h.ExpiresAt.After(now) {
			out = append(out, h)
			delete(m.holds, id)
		}
	}
	return out, nil
}

func (m memRates) ListRatePlans(ctx context.Context, campgroundID uint) ([]models.RatePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RatePlan
	for _, p := range m.plans {
		if p.CampgroundID == campgroundID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memRates) ListPricingRules(ctx context.Context, campgroundID uint) ([]models.PricingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PricingRule
	for _, r := range m.rules {
		if r.CampgroundID == campgroundID && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memRates) FindDepositConfig(ctx context.Context, campgroundID uint) (*models.DepositConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.deposits[campgroundID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

var errBackend = errors.New("backend down")

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
