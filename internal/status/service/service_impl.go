package service

import (
	"context"
	"strings"

	"github.com/opencitizen/notifstore/internal/genericstatus"
	"github.com/opencitizen/notifstore/internal/status/domain"
	"github.com/opencitizen/notifstore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("status.service"),
		repo: p.Repo,
	}
}

// Resolve applies the resolution order: a valid caller-supplied generic
// status wins, then an existing label mapping, then lazy registration of the
// unseen label with the Unknown sentinel.
func (s *Service) Resolve(ctx context.Context, candidateStatusID int, label string) (domain.Resolution, error) {
	if genericstatus.Exists(candidateStatusID) {
		return domain.Resolution{GenericStatusID: candidateStatusID, RecordID: 0}, nil
	}

	record, err := s.Register(ctx, label)
	if err != nil {
		return domain.Resolution{}, err
	}
	if record == nil {
		return domain.Resolution{GenericStatusID: int(genericstatus.Unknown)}, nil
	}

	resolved := int(genericstatus.Unknown)
	if genericstatus.Exists(record.GenericStatusID) {
		resolved = record.GenericStatusID
	}

	return domain.Resolution{GenericStatusID: resolved, RecordID: record.ID}, nil
}

// Register inserts the label on first sight. The unique constraint on the
// label column serializes concurrent first-sightings: the loser of the race
// fetches the row the winner inserted.
func (s *Service) Register(ctx context.Context, label string) (*domain.DemandStatus, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}

	existing, err := s.repo.FindByLabel(ctx, s.db, label)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	record := &domain.DemandStatus{
		Label:           label,
		GenericStatusID: int(genericstatus.Unknown),
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByLabel(ctx, s.db, label)
		}
		return nil, err
	}

	s.log.Info("registered new status label", zap.String("label", label))
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.DemandStatus, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateStatusRequest) (*domain.DemandStatus, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, domain.ErrEmptyLabel
	}
	if !domain.ValidGenericStatus(req.GenericStatusID) {
		return nil, domain.ErrInvalidGenericStatus
	}

	record, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	record.Label = label
	record.GenericStatusID = req.GenericStatusID
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if record == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}
