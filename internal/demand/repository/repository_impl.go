package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/opencitizen/notifstore/internal/demand/domain"
	"github.com/opencitizen/notifstore/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNaturalKey(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) (*domain.Demand, error) {
	var demand domain.Demand
	err := db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ?", demandID, demandTypeID).
		Order("uid desc").
		First(&demand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &demand, nil
}

func (r *repo) ListByFilter(ctx context.Context, db *gorm.DB, filter domain.DemandFilter, page pagination.Pagination) ([]*domain.Demand, error) {
	var demands []*domain.Demand
	stmt := db.WithContext(ctx).Model(&domain.Demand{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Reference != "" {
		stmt = stmt.Where("reference = ?", filter.Reference)
	}
	if filter.DemandTypeID != "" {
		stmt = stmt.Where("demand_type_id = ?", filter.DemandTypeID)
	}
	if filter.StatusID != nil {
		stmt = stmt.Where("status_id = ?", *filter.StatusID)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		uid, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("uid > ?", uid)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.Order("uid asc").Find(&demands).Error
	if err != nil {
		return nil, err
	}
	return demands, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, demand *domain.Demand) error {
	return db.WithContext(ctx).Create(demand).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, demand *domain.Demand) error {
	return db.WithContext(ctx).Exec(
		`UPDATE demands SET status_id = ?, customer_id = ?, connection_id = ?, closure_date = ?, current_step = ?, subtype_id = ?, modify_date = ? WHERE uid = ?`,
		demand.StatusID,
		demand.CustomerID,
		demand.ConnectionID,
		demand.ClosureDate,
		demand.CurrentStep,
		demand.SubtypeID,
		demand.ModifyDate,
		demand.UID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error {
	return db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ?", demandID, demandTypeID).
		Delete(&domain.Demand{}).Error
}

func (r *repo) InsertNotification(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) NotificationsByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) ([]domain.Notification, error) {
	return r.NotificationsByFilter(ctx, db, domain.NotificationFilter{
		DemandID:     demandID,
		DemandTypeID: demandTypeID,
	})
}

func (r *repo) NotificationsByFilter(ctx context.Context, db *gorm.DB, filter domain.NotificationFilter) ([]domain.Notification, error) {
	var notifications []domain.Notification
	stmt := db.WithContext(ctx).Model(&domain.Notification{})
	if filter.DemandID != "" {
		stmt = stmt.Where("demand_id = ?", filter.DemandID)
	}
	if filter.DemandTypeID != "" {
		stmt = stmt.Where("demand_type_id = ?", filter.DemandTypeID)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("date <= ?", *filter.EndDate)
	}
	if len(filter.Channels) > 0 {
		names := make([]string, 0, len(filter.Channels))
		for _, c := range filter.Channels {
			names = append(names, string(c))
		}
		stmt = stmt.Where("id IN (SELECT notification_id FROM notification_contents WHERE channel IN ?)", names)
	}
	err := stmt.Order("id asc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) DeleteNotificationsByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error {
	return db.WithContext(ctx).
		Where("demand_id = ? AND demand_type_id = ?", demandID, demandTypeID).
		Delete(&domain.Notification{}).Error
}
