package service

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
	"github.com/opencitizen/notifstore/internal/event/domain"
	"github.com/opencitizen/notifstore/internal/event/repository"
)

func setupTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.NotificationEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	}), fake
}

func TestRecord_FillsDefaults(t *testing.T) {
	svc, fake := setupTestService(t)

	id, err := svc.Record(context.Background(), &domain.NotificationEvent{
		Type:         domain.TypeDashboard,
		Status:       domain.StatusSuccess,
		DemandID:     "REF-1",
		DemandTypeID: "5",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	events, err := svc.ListByDemand(context.Background(), "REF-1", "5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, fake.Now().Equal(events[0].EventDate))
	assert.NotEmpty(t, events[0].MessageID)
}

func TestRecord_KeepsCallerCorrelationID(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Record(context.Background(), &domain.NotificationEvent{
		Type:         "SMS_FAILURE",
		Status:       domain.StatusFailed,
		MessageID:    "upstream-77",
		DemandID:     "REF-2",
		DemandTypeID: "5",
	})
	require.NoError(t, err)

	events, err := svc.ListByDemand(context.Background(), "REF-2", "5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "upstream-77", events[0].MessageID)
}

func TestPurgeOlderThan_CutoffBoundary(t *testing.T) {
	svc, fake := setupTestService(t)

	old := fake.Now().AddDate(0, 0, -61)
	fresh := fake.Now().AddDate(0, 0, -59)
	for _, date := range []time.Time{old, fresh} {
		_, err := svc.Record(context.Background(), &domain.NotificationEvent{
			EventDate:    date,
			Type:         domain.TypeDashboard,
			Status:       domain.StatusSuccess,
			DemandID:     "REF-3",
			DemandTypeID: "5",
		})
		require.NoError(t, err)
	}

	deleted, err := svc.PurgeOlderThan(context.Background(), 60)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	events, err := svc.ListByDemand(context.Background(), "REF-3", "5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, fresh.Equal(events[0].EventDate))
}

func TestPurgeOlderThan_InvalidRetention(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.PurgeOlderThan(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRetention)
}

func TestListByFilter(t *testing.T) {
	svc, fake := setupTestService(t)

	for _, status := range []string{domain.StatusSuccess, domain.StatusFailed} {
		_, err := svc.Record(context.Background(), &domain.NotificationEvent{
			Type:         domain.TypeDashboard,
			Status:       status,
			DemandID:     "REF-4",
			DemandTypeID: "5",
		})
		require.NoError(t, err)
	}

	failed, err := svc.ListByFilter(context.Background(), domain.EventFilter{
		DemandID: "REF-4",
		Status:   domain.StatusFailed,
	})
	require.NoError(t, err)
	require.Len(t, failed, 1)

	start := fake.Now().Add(-time.Minute)
	all, err := svc.ListByFilter(context.Background(), domain.EventFilter{StartDate: &start})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListByNotification(t *testing.T) {
	svc, fake := setupTestService(t)

	first := fake.Now().Add(-2 * time.Hour)
	second := fake.Now().Add(-time.Hour)
	for _, date := range []time.Time{first, first, second} {
		_, err := svc.Record(context.Background(), &domain.NotificationEvent{
			Type:             domain.TypeDashboard,
			Status:           domain.StatusSuccess,
			DemandID:         "REF-6",
			DemandTypeID:     "5",
			NotificationDate: date,
		})
		require.NoError(t, err)
	}

	events, err := svc.ListByNotification(context.Background(), "REF-6", "5", first)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestDeleteByCustomer(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Record(context.Background(), &domain.NotificationEvent{
		Type: domain.TypeDashboard, Status: domain.StatusSuccess,
		DemandID: "REF-5", DemandTypeID: "5", CustomerID: "cust-css",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByCustomer(context.Background(), "cust-css"))

	events, err := svc.ListByDemand(context.Background(), "REF-5", "5")
	require.NoError(t, err)
	assert.Empty(t, events)
}
