package consumer

import (
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/database"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// --- Fake Acknowledger ---

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func deliver(pc *ParkConsumer, key, body string) *fakeAck {
	ack := &fakeAck{}
	pc.handleMessage(amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: key, Body: []byte(body)})
	return ack
}

func TestParkConsumer_UpsertsSite(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)

	ack := deliver(pc, KeySite, `{"id":11,"campground_id":1,"name":"A1","site_class_id":2,"type":"rv","status":"available","max_rig_length":35}`)
	assert.Equal(t, 1, ack.acked)

	ack = deliver(pc, KeySite, `{"id":11,"campground_id":1,"name":"A1 riverside","site_class_id":2,"type":"rv","status":"maintenance","max_rig_length":40}`)
	assert.Equal(t, 1, ack.acked)

	var sites []models.Site
	require.NoError(t, db.Find(&sites).Error)
	require.Len(t, sites, 1)
	assert.Equal(t, "A1 riverside", sites[0].Name)
	assert.Equal(t, models.SiteMaintenance, sites[0].Status)
	assert.Equal(t, 40, sites[0].MaxRigLength)
}

func TestParkConsumer_RatePlanDeactivation(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)

	require.NoError(t, pc.Apply(KeyRatePlan, []byte(`{"id":3,"campground_id":1,"name":"Summer","start_date":"2024-06-01T15:30:00Z","amount_cents":6500,"rate_type":"nightly","active":true}`)))
	require.NoError(t, pc.Apply(KeyRatePlan, []byte(`{"id":3,"campground_id":1,"name":"Summer","start_date":"2024-06-01T15:30:00Z","amount_cents":6500,"rate_type":"nightly","active":false}`)))

	var plan models.RatePlan
	require.NoError(t, db.First(&plan, 3).Error)
	assert.False(t, plan.Active)
	require.NotNil(t, plan.StartDate)
	assert.Equal(t, 0, plan.StartDate.UTC().Hour())
}

func TestParkConsumer_DepositConfigKeyedByCampground(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)

	require.NoError(t, pc.Apply(KeyDepositConfig, []byte(`{"campground_id":4,"rule":"half"}`)))
	require.NoError(t, pc.Apply(KeyDepositConfig, []byte(`{"campground_id":4,"rule":"percentage","percentage":25,"full_within_days":7}`)))

	var cfg models.DepositConfig
	require.NoError(t, db.First(&cfg, "campground_id = ?", 4).Error)
	assert.Equal(t, models.DepositPercentage, cfg.Rule)
	assert.Equal(t, 25.0, cfg.Percentage)
	require.NotNil(t, cfg.FullWithinDays)
	assert.Equal(t, 7, *cfg.FullWithinDays)
}

func TestParkConsumer_DeletesMaintenanceBlock(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)

	require.NoError(t, pc.Apply(KeyMaintenanceBlock, []byte(`{"id":5,"campground_id":1,"site_id":11,"start_date":"2024-07-01T00:00:00Z","end_date":"2024-07-03T00:00:00Z","reason":"septic repair"}`)))
	var count int64
	db.Model(&models.MaintenanceBlock{}).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, pc.Apply(KeyMaintenanceBlock, []byte(`{"id":5,"deleted":true}`)))
	db.Model(&models.MaintenanceBlock{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestParkConsumer_RejectsBadMessages(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)

	ack := deliver(pc, KeySite, `not json`)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)

	ack = deliver(pc, "park.guest", `{"id":1}`)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)

	ack = deliver(pc, KeyMaintenanceBlock, `{"deleted":true}`)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestParkConsumer_RequeuesOnStoreError(t *testing.T) {
	db := newTestDB(t)
	pc := NewParkConsumer(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	ack := deliver(pc, KeySiteClass, `{"id":2,"campground_id":1,"name":"Full hookup","default_rate_cents":5000,"max_occupancy":6}`)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}
