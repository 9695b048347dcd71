package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/demandtype/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, demandType *domain.DemandType) error {
	return db.WithContext(ctx).Create(demandType).Error
}

func (r *repo) FindByTypeID(ctx context.Context, db *gorm.DB, typeID string) (*domain.DemandType, error) {
	var demandType domain.DemandType
	err := db.WithContext(ctx).
		Where("type_id = ?", typeID).
		First(&demandType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &demandType, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.DemandType, error) {
	var types []*domain.DemandType
	err := db.WithContext(ctx).Order("type_id asc").Find(&types).Error
	return types, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, demandType *domain.DemandType) error {
	return db.WithContext(ctx).Exec(
		`UPDATE demand_types SET type_id = ?, label = ?, url = ?, app_code = ? WHERE id = ?`,
		demandType.TypeID,
		demandType.Label,
		demandType.URL,
		demandType.AppCode,
		demandType.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.DemandType{}, id).Error
}
