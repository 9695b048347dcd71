package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/demandtype/domain"
	"github.com/opencitizen/notifstore/pkg/db"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:   p.DB,
		log:  p.Log.Named("demandtype.service"),
		repo: p.Repo,
	}
}

func (s *service) Create(ctx context.Context, demandType *domain.DemandType) (*domain.DemandType, error) {
	if demandType.TypeID == "" {
		return nil, domain.ErrMissingTypeID
	}
	if err := s.repo.Insert(ctx, s.db, demandType); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}
	return demandType, nil
}

func (s *service) Get(ctx context.Context, typeID string) (*domain.DemandType, error) {
	demandType, err := s.repo.FindByTypeID(ctx, s.db, typeID)
	if err != nil {
		return nil, err
	}
	if demandType == nil {
		return nil, domain.ErrNotFound
	}
	return demandType, nil
}

func (s *service) Exists(ctx context.Context, typeID string) bool {
	demandType, err := s.repo.FindByTypeID(ctx, s.db, typeID)
	if err != nil {
		s.log.Warn("demand type lookup", zap.Error(err), zap.String("type_id", typeID))
		return false
	}
	return demandType != nil
}

func (s *service) List(ctx context.Context) ([]*domain.DemandType, error) {
	return s.repo.List(ctx, s.db)
}

func (s *service) Update(ctx context.Context, demandType *domain.DemandType) (*domain.DemandType, error) {
	if demandType.TypeID == "" {
		return nil, domain.ErrMissingTypeID
	}
	if err := s.repo.Update(ctx, s.db, demandType); err != nil {
		return nil, err
	}
	return demandType, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, s.db, id)
}
