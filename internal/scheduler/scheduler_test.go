package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/clock"
	"github.com/opencitizen/notifstore/internal/config"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	eventrepo "github.com/opencitizen/notifstore/internal/event/repository"
	eventservice "github.com/opencitizen/notifstore/internal/event/service"
)

func setupScheduler(t *testing.T, cfg Config) (*Scheduler, eventdomain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&eventdomain.NotificationEvent{}))

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	events := eventservice.New(eventservice.Params{
		DB: db, Log: zap.NewNop(), Clock: fake, GenID: node, Repo: eventrepo.Provide(),
	})

	sched, err := New(Params{
		Log:    zap.NewNop(),
		Clock:  fake,
		Events: events,
		Config: cfg,
	})
	require.NoError(t, err)
	return sched, events, fake
}

func TestRunOnce_PurgesExpiredEvents(t *testing.T) {
	sched, events, fake := setupScheduler(t, Config{RetentionDays: 30})

	_, err := events.Record(context.Background(), &eventdomain.NotificationEvent{
		EventDate: fake.Now().AddDate(0, 0, -31),
		Type:      eventdomain.TypeDashboard,
		Status:    eventdomain.StatusSuccess,
		DemandID:  "REF-1", DemandTypeID: "5",
	})
	require.NoError(t, err)
	_, err = events.Record(context.Background(), &eventdomain.NotificationEvent{
		Type:     eventdomain.TypeDashboard,
		Status:   eventdomain.StatusSuccess,
		DemandID: "REF-1", DemandTypeID: "5",
	})
	require.NoError(t, err)

	require.NoError(t, sched.RunOnce(context.Background()))

	remaining, err := events.ListByDemand(context.Background(), "REF-1", "5")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 24*time.Hour, cfg.RunInterval)
	assert.Equal(t, 60, cfg.RetentionDays)
}

func TestProvideConfig(t *testing.T) {
	cfg := ProvideConfig(config.Config{PurgeInterval: "6h", EventRetentionDays: 15})
	assert.Equal(t, 6*time.Hour, cfg.RunInterval)
	assert.Equal(t, 15, cfg.RetentionDays)

	cfg = ProvideConfig(config.Config{PurgeInterval: "not-a-duration"})
	assert.Equal(t, 24*time.Hour, cfg.RunInterval)
	assert.Equal(t, 60, cfg.RetentionDays)
}
