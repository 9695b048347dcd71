package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Event statuses and types written by the ingestion engine. Both columns are
// free text on the wire; these are the values this service produces itself.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"

	TypeDashboard = "DASHBOARD"
)

// NotificationEvent is one audit record of a delivery or validation attempt.
// Events reference demands by denormalized natural key, not ownership: many
// events may point at the same demand and notification timestamp.
type NotificationEvent struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	EventDate        time.Time    `gorm:"column:event_date;not null;index" json:"event_date"`
	Type             string       `gorm:"column:type;not null" json:"type"`
	Status           string       `gorm:"column:status;not null" json:"status"`
	Redelivery       int          `gorm:"column:redelivery;not null;default:0" json:"redelivery"`
	Message          string       `gorm:"column:message" json:"message,omitempty"`
	MessageID        string       `gorm:"column:msg_id" json:"msg_id,omitempty"`
	DemandID         string       `gorm:"column:demand_id;index:idx_events_demand,priority:1" json:"demand_id,omitempty"`
	DemandTypeID     string       `gorm:"column:demand_type_id;index:idx_events_demand,priority:2" json:"demand_type_id,omitempty"`
	CustomerID       string       `gorm:"column:customer_id;index" json:"customer_id,omitempty"`
	NotificationDate time.Time    `gorm:"column:notification_date" json:"notification_date"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	DemandID     string
	DemandTypeID string
	Status       string
	StartDate    *time.Time
	EndDate      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *NotificationEvent) error
	ListByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) ([]*NotificationEvent, error)
	ListByNotification(ctx context.Context, db *gorm.DB, demandID, demandTypeID string, notificationDate time.Time) ([]*NotificationEvent, error)
	ListByFilter(ctx context.Context, db *gorm.DB, filter EventFilter) ([]*NotificationEvent, error)
	DeleteBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
	DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID string) error
	DeleteByDemand(ctx context.Context, db *gorm.DB, demandID, demandTypeID string) error
}

type Service interface {
	// Record persists one audit record. Called once per ingestion attempt
	// and for explicit event submissions.
	Record(ctx context.Context, event *NotificationEvent) (snowflake.ID, error)

	ListByDemand(ctx context.Context, demandID, demandTypeID string) ([]*NotificationEvent, error)
	// ListByNotification narrows to the events of one delivery, identified
	// by the demand pair and the notification timestamp.
	ListByNotification(ctx context.Context, demandID, demandTypeID string, notificationDate time.Time) ([]*NotificationEvent, error)
	ListByFilter(ctx context.Context, filter EventFilter) ([]*NotificationEvent, error)

	// PurgeOlderThan deletes events whose event date is before
	// now - retentionDays. Returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error)

	DeleteByCustomer(ctx context.Context, customerID string) error
	DeleteByDemand(ctx context.Context, demandID, demandTypeID string) error
}

var ErrInvalidRetention = errors.New("invalid_retention")
