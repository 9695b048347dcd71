package repository

import (
	"context"
	"errors"

	"github.com/opencitizen/notifstore/internal/status/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, status *domain.DemandStatus) error {
	return db.WithContext(ctx).Create(status).Error
}

func (r *repo) FindByLabel(ctx context.Context, db *gorm.DB, label string) (*domain.DemandStatus, error) {
	var status domain.DemandStatus
	err := db.WithContext(ctx).
		Where("status = ?", label).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.DemandStatus, error) {
	var status domain.DemandStatus
	err := db.WithContext(ctx).First(&status, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.DemandStatus, error) {
	var statuses []*domain.DemandStatus
	err := db.WithContext(ctx).
		Order("status asc").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, status *domain.DemandStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE demand_statuses SET status = ?, status_id = ? WHERE id = ?`,
		status.Label,
		status.GenericStatusID,
		status.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.DemandStatus{}, id).Error
}
