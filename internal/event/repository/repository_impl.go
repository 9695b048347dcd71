package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/event/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.NotificationEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) ListByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) ([]*domain.NotificationEvent, error) {
	var events []*domain.NotificationEvent
	err := db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ?", demandID, demandTypeID).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

func (r *repo) ListByNotification(ctx context.Context, db *gorm.DB, demandID, demandTypeID string, notificationDate time.Time) ([]*domain.NotificationEvent, error) {
	var events []*domain.NotificationEvent
	err := db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ? AND notification_date = ?", demandID, demandTypeID, notificationDate).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

func (r *repo) ListByFilter(ctx context.Context, db *gorm.DB, filter domain.EventFilter) ([]*domain.NotificationEvent, error) {
	query := db.WithContext(ctx).Model(&domain.NotificationEvent{})

	if filter.DemandID != "" {
		query = query.Where("demand_id = ?", filter.DemandID)
	}
	if filter.DemandTypeID != "" {
		query = query.Where("demand_type_id = ?", filter.DemandTypeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("event_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("event_date <= ?", *filter.EndDate)
	}

	var events []*domain.NotificationEvent
	err := query.Order("event_date ASC").Find(&events).Error
	return events, err
}

func (r *repo) DeleteBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("event_date < ?", cutoff).
		Delete(&domain.NotificationEvent{})
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID string) error {
	return db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&domain.NotificationEvent{}).Error
}

func (r *repo) DeleteByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error {
	return db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ?", demandID, demandTypeID).
		Delete(&domain.NotificationEvent{}).Error
}
