package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencitizen/notifstore/internal/content/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, content *domain.NotificationContent) error {
	return db.WithContext(ctx).Create(content).Error
}

func (r *repo) ListByNotification(ctx context.Context, db *gorm.DB, notificationID int64, channels []string) ([]*domain.NotificationContent, error) {
	var contents []*domain.NotificationContent
	stmt := db.WithContext(ctx).
		Model(&domain.NotificationContent{}).
		Where("notification_id = ?", notificationID)
	if len(channels) > 0 {
		stmt = stmt.Where("channel IN ?", channels)
	}
	err := stmt.Order("id asc").Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.NotificationContent, error) {
	var contents []*domain.NotificationContent
	err := db.WithContext(ctx).
		Order("id asc").
		Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *repo) UpdateContent(ctx context.Context, db *gorm.DB, id snowflake.ID, content []byte) error {
	return db.WithContext(ctx).
		Model(&domain.NotificationContent{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *repo) DeleteByNotification(ctx context.Context, db *gorm.DB, notificationID int64) error {
	return db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Delete(&domain.NotificationContent{}).Error
}
