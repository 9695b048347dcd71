package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/genericstatus"
	"github.com/opencitizen/notifstore/internal/status/domain"
	"github.com/opencitizen/notifstore/internal/status/repository"
)

func setupTestService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.DemandStatus{}))

	return New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func TestResolve_ValidCandidateWins(t *testing.T) {
	svc := setupTestService(t)

	res, err := svc.Resolve(context.Background(), int(genericstatus.Accepted), "Terminé")
	require.NoError(t, err)
	assert.Equal(t, int(genericstatus.Accepted), res.GenericStatusID)

	// The label must not have been registered: the candidate short-circuits.
	statuses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestResolve_UnseenLabelRegistersUnknown(t *testing.T) {
	svc := setupTestService(t)

	res, err := svc.Resolve(context.Background(), 0, "En cours")
	require.NoError(t, err)
	assert.Equal(t, int(genericstatus.Unknown), res.GenericStatusID)
	assert.NotZero(t, res.RecordID)

	statuses, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "En cours", statuses[0].Label)
	assert.Equal(t, int(genericstatus.Unknown), statuses[0].GenericStatusID)
}

func TestResolve_RegistrationIsIdempotent(t *testing.T) {
	svc := setupTestService(t)

	first, err := svc.Resolve(context.Background(), 0, "En attente")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), 0, "En attente")
	require.NoError(t, err)
	assert.Equal(t, first.RecordID, second.RecordID)

	statuses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
}

func TestResolve_MappedLabelReturnsMapping(t *testing.T) {
	svc := setupTestService(t)

	record, err := svc.Register(context.Background(), "Clôturée")
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), domain.UpdateStatusRequest{
		ID:              record.ID,
		Label:           record.Label,
		GenericStatusID: int(genericstatus.Closed),
	})
	require.NoError(t, err)

	res, err := svc.Resolve(context.Background(), 0, "Clôturée")
	require.NoError(t, err)
	assert.Equal(t, int(genericstatus.Closed), res.GenericStatusID)
	assert.Equal(t, record.ID, res.RecordID)
}

func TestRegister_ConcurrentFirstSighting(t *testing.T) {
	svc := setupTestService(t)

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			record, err := svc.Register(context.Background(), "Instruction")
			if assert.NoError(t, err) && assert.NotNil(t, record) {
				ids[n] = record.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}

	statuses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
}

func TestRegister_EmptyLabelIsNoop(t *testing.T) {
	svc := setupTestService(t)

	record, err := svc.Register(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestUpdate_RejectsInvalidGenericStatus(t *testing.T) {
	svc := setupTestService(t)

	record, err := svc.Register(context.Background(), "Refusée")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), domain.UpdateStatusRequest{
		ID:              record.ID,
		Label:           record.Label,
		GenericStatusID: 999,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGenericStatus)
}

func TestDelete_UnknownID(t *testing.T) {
	svc := setupTestService(t)

	err := svc.Delete(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
