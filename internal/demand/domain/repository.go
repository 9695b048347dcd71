package domain

import (
	"context"
	"time"

	"github.com/opencitizen/notifstore/pkg/db/pagination"
	"gorm.io/gorm"
)

// DemandFilter narrows demand listings. Zero values are ignored.
type DemandFilter struct {
	CustomerID   string
	Reference    string
	DemandTypeID string
	StatusID     *int
}

// NotificationFilter narrows notification listings. Zero values are ignored.
type NotificationFilter struct {
	DemandID     string
	DemandTypeID string
	StartDate    *time.Time
	EndDate      *time.Time
	Channels     []Channel
}

type Repository interface {
	// FindByNaturalKey returns the most recently created demand for the
	// (demand id, demand type id) pair, or nil.
	FindByNaturalKey(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) (*Demand, error)
	ListByFilter(ctx context.Context, db *gorm.DB, filter DemandFilter, page pagination.Pagination) ([]*Demand, error)
	Insert(ctx context.Context, db *gorm.DB, demand *Demand) error
	Update(ctx context.Context, db *gorm.DB, demand *Demand) error
	Delete(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error

	InsertNotification(ctx context.Context, db *gorm.DB, notification *Notification) error
	NotificationsByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) ([]Notification, error)
	NotificationsByFilter(ctx context.Context, db *gorm.DB, filter NotificationFilter) ([]Notification, error)
	DeleteNotificationsByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error
}
