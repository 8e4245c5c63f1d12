package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/calendar"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

// --- Mock AvailabilityService ---

type mockAvailabilityService struct {
	checkFn    func(ctx context.Context, req service.OverlapRequest) (availability.Result, error)
	overlapsFn func(ctx context.Context, campgroundID uint) ([]availability.Overlap, error)
	matchFn    func(ctx context.Context, req service.MatchRequest) ([]service.SiteMatch, error)
}

func (m *mockAvailabilityService) CheckOverlap(ctx context.Context, req service.OverlapRequest) (availability.Result, error) {
	return m.checkFn(ctx, req)
}
func (m *mockAvailabilityService) ListOverlaps(ctx context.Context, campgroundID uint) ([]availability.Overlap, error) {
	return m.overlapsFn(ctx, campgroundID)
}
func (m *mockAvailabilityService) MatchSites(ctx context.Context, req service.MatchRequest) ([]service.SiteMatch, error) {
	return m.matchFn(ctx, req)
}

// --- Mock HoldService ---

type mockHoldService struct {
	createFn  func(ctx context.Context, req service.HoldRequest) (*models.Hold, error)
	releaseFn func(ctx context.Context, id string) error
}

func (m *mockHoldService) CreateHold(ctx context.Context, req service.HoldRequest) (*models.Hold, error) {
	return m.createFn(ctx, req)
}
func (m *mockHoldService) ReleaseHold(ctx context.Context, id string) error {
	return m.releaseFn(ctx, id)
}
func (m *mockHoldService) ExpireHolds(ctx context.Context) ([]models.Hold, error) {
	return nil, nil
}

// --- Mock QuoteService ---

type mockQuoteService struct {
	quoteFn func(ctx context.Context, req service.QuoteRequest) (pricing.Quote, error)
	draftFn func(ctx context.Context, req service.DraftRequest) (calendar.Draft, pricing.Quote, error)
}

func (m *mockQuoteService) GetQuote(ctx context.Context, req service.QuoteRequest) (pricing.Quote, error) {
	return m.quoteFn(ctx, req)
}
func (m *mockQuoteService) DraftQuote(ctx context.Context, req service.DraftRequest) (calendar.Draft, pricing.Quote, error) {
	return m.draftFn(ctx, req)
}

// --- Mock ReservationService ---

type mockReservationService struct {
	createFn    func(ctx context.Context, in service.CreateReservationInput) (*service.ReservationDetail, error)
	getFn       func(ctx context.Context, id uint) (*service.ReservationDetail, error)
	listFn      func(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error)
	updateFn    func(ctx context.Context, id uint, in service.UpdateReservationInput) (*service.ReservationDetail, error)
	paymentFn   func(ctx context.Context, id uint, amount int64) (*service.ReservationDetail, error)
	deleteFn    func(ctx context.Context, id uint) error
	underpaidFn func(ctx context.Context, campgroundID uint) ([]service.UnderpaidReservation, error)
	bulkFn      func(ctx context.Context, in service.BulkTransitionInput) (service.BulkResult, error)
}

func (m *mockReservationService) Create(ctx context.Context, in service.CreateReservationInput) (*service.ReservationDetail, error) {
	return m.createFn(ctx, in)
}
func (m *mockReservationService) Get(ctx context.Context, id uint) (*service.ReservationDetail, error) {
	return m.getFn(ctx, id)
}
func (m *mockReservationService) List(ctx context.Context, q models.ReservationQuery) ([]models.Reservation, error) {
	return m.listFn(ctx, q)
}
func (m *mockReservationService) Update(ctx context.Context, id uint, in service.UpdateReservationInput) (*service.ReservationDetail, error) {
	return m.updateFn(ctx, id, in)
}
func (m *mockReservationService) RecordPayment(ctx context.Context, id uint, amount int64) (*service.ReservationDetail, error) {
	return m.paymentFn(ctx, id, amount)
}
func (m *mockReservationService) Delete(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}
func (m *mockReservationService) ListUnderpaid(ctx context.Context, campgroundID uint) ([]service.UnderpaidReservation, error) {
	return m.underpaidFn(ctx, campgroundID)
}
func (m *mockReservationService) NotifyUnderpaid(ctx context.Context) (int, error) {
	return 0, nil
}
func (m *mockReservationService) BulkTransition(ctx context.Context, in service.BulkTransitionInput) (service.BulkResult, error) {
	return m.bulkFn(ctx, in)
}

// --- Mock DepositService ---

type mockDepositService struct {
	calculateFn func(ctx context.Context, req service.DepositRequest) (service.DepositResult, error)
}

func (m *mockDepositService) Calculate(ctx context.Context, req service.DepositRequest) (service.DepositResult, error) {
	return m.calculateFn(ctx, req)
}

// --- Mock ForecastService ---

type mockForecastService struct {
	generateFn func(ctx context.Context, req service.ForecastRequest) (service.Forecast, error)
}

func (m *mockForecastService) Generate(ctx context.Context, req service.ForecastRequest) (service.Forecast, error) {
	return m.generateFn(ctx, req)
}

// --- Helpers ---

type routable interface {
	RegisterRoutes(e *echo.Echo)
}

func newServer(handlers ...routable) *echo.Echo {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler
	for _, h := range handlers {
		h.RegisterRoutes(e)
	}
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
