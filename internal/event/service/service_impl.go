package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/clock"
	"github.com/opencitizen/notifstore/internal/event/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) Record(ctx context.Context, event *domain.NotificationEvent) (snowflake.ID, error) {
	if event.ID == 0 {
		event.ID = s.genID.Generate()
	}
	if event.EventDate.IsZero() {
		event.EventDate = s.clock.Now()
	}
	// Correlation ids come from upstream transports when they have one.
	// Events recorded locally get a fresh one so they stay traceable.
	if event.MessageID == "" {
		event.MessageID = uuid.NewString()
	}

	if err := s.repo.Insert(ctx, s.db, event); err != nil {
		s.log.Error("record event", zap.Error(err), zap.String("demand_id", event.DemandID))
		return 0, err
	}
	return event.ID, nil
}

func (s *service) ListByDemand(ctx context.Context, demandID, demandTypeID string) ([]*domain.NotificationEvent, error) {
	return s.repo.ListByDemand(ctx, s.db, demandID, demandTypeID)
}

func (s *service) ListByNotification(ctx context.Context, demandID, demandTypeID string, notificationDate time.Time) ([]*domain.NotificationEvent, error) {
	return s.repo.ListByNotification(ctx, s.db, demandID, demandTypeID, notificationDate)
}

func (s *service) ListByFilter(ctx context.Context, filter domain.EventFilter) ([]*domain.NotificationEvent, error) {
	return s.repo.ListByFilter(ctx, s.db, filter)
}

func (s *service) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, domain.ErrInvalidRetention
	}

	cutoff := s.clock.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteBefore(ctx, s.db, cutoff)
	if err != nil {
		s.log.Error("purge events", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("purged notification events",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

func (s *service) DeleteByCustomer(ctx context.Context, customerID string) error {
	return s.repo.DeleteByCustomer(ctx, s.db, customerID)
}

func (s *service) DeleteByDemand(ctx context.Context, demandID, demandTypeID string) error {
	return s.repo.DeleteByDemand(ctx, s.db, demandID, demandTypeID)
}
