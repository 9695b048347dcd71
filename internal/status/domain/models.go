package domain

import (
	"context"
	"errors"

	"github.com/opencitizen/notifstore/internal/genericstatus"
	"gorm.io/gorm"
)

// DemandStatus maps a free-text status label from an upstream system to a
// generic status. Rows are created lazily the first time a label is seen,
// with the generic status left unset until an operator maps it.
type DemandStatus struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Label           string `gorm:"column:status;not null;uniqueIndex" json:"label"`
	GenericStatusID int    `gorm:"column:status_id;not null;default:-1" json:"generic_status_id"`
}

func (DemandStatus) TableName() string {
	return "demand_statuses"
}

// Resolution is the outcome of a registry lookup.
type Resolution struct {
	GenericStatusID int
	RecordID        int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, status *DemandStatus) error
	FindByLabel(ctx context.Context, db *gorm.DB, label string) (*DemandStatus, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*DemandStatus, error)
	List(ctx context.Context, db *gorm.DB) ([]*DemandStatus, error)
	Update(ctx context.Context, db *gorm.DB, status *DemandStatus) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}

type Service interface {
	// Resolve maps a candidate generic status id and a free-text label to a
	// generic status. An unseen label is registered exactly once; its
	// resolution is genericstatus.Unknown until an operator maps it.
	Resolve(ctx context.Context, candidateStatusID int, label string) (Resolution, error)

	// Register returns the registry row for label, creating it if absent.
	Register(ctx context.Context, label string) (*DemandStatus, error)

	List(ctx context.Context) ([]*DemandStatus, error)
	Update(ctx context.Context, req UpdateStatusRequest) (*DemandStatus, error)
	Delete(ctx context.Context, id int64) error
}

type UpdateStatusRequest struct {
	ID              int64  `json:"id"`
	Label           string `json:"label"`
	GenericStatusID int    `json:"generic_status_id"`
}

var (
	ErrEmptyLabel           = errors.New("empty_status_label")
	ErrNotFound             = errors.New("status_not_found")
	ErrInvalidGenericStatus = errors.New("invalid_generic_status")
)

// ValidGenericStatus accepts enumeration members and the unset sentinel.
func ValidGenericStatus(id int) bool {
	return id == int(genericstatus.Unknown) || genericstatus.Exists(id)
}
