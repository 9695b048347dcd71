package service

import (
	"context"
	"sync"
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
	contentcodec "github.com/opencitizen/notifstore/internal/content/codec"
	contentdomain "github.com/opencitizen/notifstore/internal/content/domain"
	contentrepo "github.com/opencitizen/notifstore/internal/content/repository"
	contentservice "github.com/opencitizen/notifstore/internal/content/service"
	"github.com/opencitizen/notifstore/internal/demand/domain"
	demandrepo "github.com/opencitizen/notifstore/internal/demand/repository"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	eventrepo "github.com/opencitizen/notifstore/internal/event/repository"
	eventservice "github.com/opencitizen/notifstore/internal/event/service"
	"github.com/opencitizen/notifstore/internal/genericstatus"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
	statusrepo "github.com/opencitizen/notifstore/internal/status/repository"
	statusservice "github.com/opencitizen/notifstore/internal/status/service"
)

type fixture struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	svc      domain.Service
	statuses statusdomain.Service
	events   eventdomain.Service
	contents contentdomain.Store
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Demand{},
		&domain.Notification{},
		&contentdomain.NotificationContent{},
		&statusdomain.DemandStatus{},
		&eventdomain.NotificationEvent{},
	))

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := &config.CodecHolder{}
	holder.Set(config.DefaultCodecConfig())

	statuses := statusservice.New(statusservice.Params{
		DB: db, Log: log, Repo: statusrepo.Provide(),
	})
	contents := contentservice.New(contentservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      contentrepo.Provide(),
		Codec:     contentcodec.New(holder),
		StatusSvc: statuses,
		Holder:    holder,
	})
	events := eventservice.New(eventservice.Params{
		DB: db, Log: log, Clock: fake, GenID: node, Repo: eventrepo.Provide(),
	})
	svc := New(Params{
		DB:       db,
		Log:      log,
		Clock:    fake,
		Repo:     demandrepo.Provide(),
		Contents: contents,
		Statuses: statuses,
		Events:   events,
	})

	return &fixture{db: db, clock: fake, svc: svc, statuses: statuses, events: events, contents: contents}
}

func incomingWithDashboard(demandID, customerID, statusText string, statusID int) domain.IncomingNotification {
	return domain.IncomingNotification{
		DemandID:     demandID,
		DemandTypeID: "5",
		CustomerID:   customerID,
		ConnectionID: "conn-" + customerID,
		Date:         time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Payloads: domain.Payloads{
			MyDashboard: &domain.DashboardPayload{
				StatusID:   statusID,
				StatusText: statusText,
				Message:    "Votre dossier a été mis à jour",
			},
		},
	}
}

func TestIngest_NewCaseWithUnmappedLabel(t *testing.T) {
	f := setupFixture(t)

	result, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-1", "cust-42", "En cours", 0))
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, int(genericstatus.Unknown), result.Demand.StatusID)
	assert.Nil(t, result.Demand.ClosureDate)
	assert.NotZero(t, result.Notification.ID)

	statuses, err := f.statuses.List(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "En cours", statuses[0].Label)
	assert.Equal(t, int(genericstatus.Unknown), statuses[0].GenericStatusID)
}

func TestIngest_StatusRegistryFailurePropagates(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&statusdomain.DemandStatus{}))

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-ERR", "cust-1", "En cours", 0))
	assert.Error(t, err)
}

func TestIngest_UpdateExistingCase(t *testing.T) {
	f := setupFixture(t)

	first, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-2", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-2", "cust-1", "", int(genericstatus.InfoRequested)))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Demand.UID, second.Demand.UID)
	assert.Equal(t, int(genericstatus.InfoRequested), second.Demand.StatusID)
}

func TestIngest_CustomerMismatchCreatesSecondCase(t *testing.T) {
	f := setupFixture(t)

	first, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-3", "cust-A", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	second, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-3", "cust-B", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Demand.UID, second.Demand.UID)

	// The first case is left untouched.
	var count int64
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("demand_id = ?", "REF-3").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestIngest_EmptyCustomerOnOwnedCaseCreatesSecondCase(t *testing.T) {
	f := setupFixture(t)

	first, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-3b", "cust-A", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	// An anonymous notification on a case owned by a customer does not take
	// the case over; it forks a fresh instance.
	anonymous := incomingWithDashboard("REF-3b", "", "", int(genericstatus.Ongoing))
	anonymous.ConnectionID = ""
	second, err := f.svc.Ingest(context.Background(), anonymous)
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Demand.UID, second.Demand.UID)
	assert.Empty(t, second.Demand.CustomerID)
	assert.Equal(t, "cust-A", first.Demand.CustomerID)
}

func TestIngest_CaseClosesSetsClosureDate(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-4", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	closing := incomingWithDashboard("REF-4", "cust-1", "", int(genericstatus.Closed))
	closing.Date = time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC)
	result, err := f.svc.Ingest(context.Background(), closing)
	require.NoError(t, err)

	assert.Equal(t, int(genericstatus.Closed), result.Demand.StatusID)
	require.NotNil(t, result.Demand.ClosureDate)
	assert.Equal(t, closing.Date, result.Demand.ClosureDate.UTC())
}

func TestIngest_CaseReopensClearsClosureDate(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-5", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	closing := incomingWithDashboard("REF-5", "cust-1", "", int(genericstatus.Closed))
	result, err := f.svc.Ingest(context.Background(), closing)
	require.NoError(t, err)
	require.NotNil(t, result.Demand.ClosureDate)

	reopening := incomingWithDashboard("REF-5", "cust-1", "", int(genericstatus.Ongoing))
	result, err = f.svc.Ingest(context.Background(), reopening)
	require.NoError(t, err)
	assert.Equal(t, int(genericstatus.Ongoing), result.Demand.StatusID)
	assert.Nil(t, result.Demand.ClosureDate)
	assert.True(t, result.Demand.Open())
}

func TestIngest_NoDashboardCarriesStatusForward(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-6", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	smsOnly := domain.IncomingNotification{
		DemandID:     "REF-6",
		DemandTypeID: "5",
		CustomerID:   "cust-1",
		Date:         time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		Payloads: domain.Payloads{
			SMS: &domain.SMSPayload{PhoneNumber: "+33600000000", Message: "rappel"},
		},
	}
	result, err := f.svc.Ingest(context.Background(), smsOnly)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int(genericstatus.Ongoing), result.Demand.StatusID)
}

func TestIngest_DashboardPayloadRoundTrip(t *testing.T) {
	f := setupFixture(t)

	result, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-7", "cust-1", "En cours", 0))
	require.NoError(t, err)

	payloads, err := f.contents.GetAll(context.Background(), result.Notification.ID)
	require.NoError(t, err)
	require.NotNil(t, payloads.MyDashboard)
	assert.Equal(t, "Votre dossier a été mis à jour", payloads.MyDashboard.Message)
}

func TestIngest_ConcurrentDistinctCasesGetDistinctNotificationIDs(t *testing.T) {
	f := setupFixture(t)

	const n = 10
	var wg sync.WaitGroup
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			incoming := incomingWithDashboard("REF-C-"+string(rune('A'+k)), "cust-1", "", int(genericstatus.Ongoing))
			result, err := f.svc.Ingest(context.Background(), incoming)
			if assert.NoError(t, err) {
				ids[k] = result.Notification.ID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.NotZero(t, id)
		assert.False(t, seen[id], "duplicate notification id %d", id)
		seen[id] = true
	}
}

func TestGet_ReturnsNotificationsWithPayloads(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-8", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	demand, err := f.svc.Get(context.Background(), "REF-8", "5")
	require.NoError(t, err)
	require.Len(t, demand.Notifications, 1)
	assert.NotNil(t, demand.Notifications[0].Payloads.MyDashboard)
}

func TestGet_UnknownCase(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Get(context.Background(), "nope", "5")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove_CascadesToNotificationsContentsAndEvents(t *testing.T) {
	f := setupFixture(t)

	result, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-9", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	_, err = f.events.Record(context.Background(), &eventdomain.NotificationEvent{
		Type:         eventdomain.TypeDashboard,
		Status:       eventdomain.StatusSuccess,
		DemandID:     "REF-9",
		DemandTypeID: "5",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(context.Background(), "REF-9", "5"))

	_, err = f.svc.Get(context.Background(), "REF-9", "5")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var contents int64
	require.NoError(t, f.db.Model(&contentdomain.NotificationContent{}).
		Where("notification_id = ?", result.Notification.ID).Count(&contents).Error)
	assert.Zero(t, contents)

	remaining, err := f.events.ListByDemand(context.Background(), "REF-9", "5")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestList_FiltersByCustomerWithPagination(t *testing.T) {
	f := setupFixture(t)

	for _, id := range []string{"L-1", "L-2", "L-3"} {
		_, err := f.svc.Ingest(context.Background(), incomingWithDashboard(id, "cust-list", "", int(genericstatus.Ongoing)))
		require.NoError(t, err)
	}

	resp, err := f.svc.List(context.Background(), domain.ListDemandsRequest{
		CustomerID: "cust-list",
		PageSize:   2,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Demands, 2)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	next, err := f.svc.List(context.Background(), domain.ListDemandsRequest{
		CustomerID: "cust-list",
		PageSize:   2,
		PageToken:  resp.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, next.Demands, 1)
	assert.False(t, next.HasMore)
}

func TestNotifications_FiltersByChannel(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Ingest(context.Background(), incomingWithDashboard("REF-N", "cust-1", "", int(genericstatus.Ongoing)))
	require.NoError(t, err)

	smsOnly := domain.IncomingNotification{
		DemandID:     "REF-N",
		DemandTypeID: "5",
		CustomerID:   "cust-1",
		Date:         time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		Payloads: domain.Payloads{
			SMS: &domain.SMSPayload{PhoneNumber: "+33600000000", Message: "rappel"},
		},
	}
	_, err = f.svc.Ingest(context.Background(), smsOnly)
	require.NoError(t, err)

	all, err := f.svc.Notifications(context.Background(), domain.NotificationFilter{
		DemandID: "REF-N", DemandTypeID: "5",
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sms, err := f.svc.Notifications(context.Background(), domain.NotificationFilter{
		DemandID:     "REF-N",
		DemandTypeID: "5",
		Channels:     []domain.Channel{domain.ChannelSMS},
	})
	require.NoError(t, err)
	require.Len(t, sms, 1)
	require.NotNil(t, sms[0].Payloads.SMS)
	assert.Equal(t, "rappel", sms[0].Payloads.SMS.Message)
	assert.Nil(t, sms[0].Payloads.MyDashboard)
}
