package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	"gorm.io/gorm"
)

// NotificationContent is one typed payload blob owned by a notification.
// Immutable after creation except for the administrative bulk re-encode.
type NotificationContent struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	NotificationID int64        `gorm:"column:notification_id;not null;index" json:"notification_id"`
	Channel        string       `gorm:"column:channel;not null" json:"channel"`
	// StatusID references the status registry row for the dashboard label.
	// Only meaningful for the MYDASHBOARD channel.
	StatusID int64 `gorm:"column:status_id;not null;default:-1" json:"status_id,omitempty"`
	// GenericStatusID is a denormalized copy of the resolved generic status,
	// kept for filtering without decoding blobs.
	GenericStatusID int    `gorm:"column:generic_status_id;not null;default:-1" json:"generic_status_id,omitempty"`
	Content         []byte `gorm:"column:content" json:"-"`
}

func (NotificationContent) TableName() string {
	return "notification_contents"
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, content *NotificationContent) error
	ListByNotification(ctx context.Context, db *gorm.DB, notificationID int64, channels []string) ([]*NotificationContent, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*NotificationContent, error)
	UpdateContent(ctx context.Context, db *gorm.DB, id snowflake.ID, content []byte) error
	DeleteByNotification(ctx context.Context, db *gorm.DB, notificationID int64) error
}

// Store persists and retrieves the typed payloads of a notification.
type Store interface {
	// PutAll writes one content row per channel present in the notification
	// and returns the created rows. For the MYDASHBOARD channel it resolves
	// and persists both the registry status id and the generic status id.
	PutAll(ctx context.Context, notification *demanddomain.Notification) ([]*NotificationContent, error)

	// GetAll decodes the stored payloads of a notification, optionally
	// restricted to the given channels. Rows that fail to decode are logged
	// and skipped, never surfaced as errors.
	GetAll(ctx context.Context, notificationID int64, channels ...demanddomain.Channel) (demanddomain.Payloads, error)

	DeleteByNotification(ctx context.Context, notificationID int64) error

	// Reencode rewrites every stored blob from the current decompress
	// setting to the given compress setting. Administrative migration path
	// for flipping the codec toggle over a populated store.
	Reencode(ctx context.Context, compress bool) (int64, error)
}

var ErrUnknownChannel = errors.New("unknown_channel")
