package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// DemandType is one catalog entry describing a case type known to the
// upstream systems. TypeID is the identifier notifications carry; the
// catalog is advisory, ingestion never rejects an unknown type.
type DemandType struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TypeID  string `gorm:"column:type_id;not null;uniqueIndex" json:"type_id"`
	Label   string `gorm:"column:label;not null" json:"label"`
	URL     string `gorm:"column:url" json:"url,omitempty"`
	AppCode string `gorm:"column:app_code" json:"app_code,omitempty"`
}

func (DemandType) TableName() string {
	return "demand_types"
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, demandType *DemandType) error
	FindByTypeID(ctx context.Context, db *gorm.DB, typeID string) (*DemandType, error)
	List(ctx context.Context, db *gorm.DB) ([]*DemandType, error)
	Update(ctx context.Context, db *gorm.DB, demandType *DemandType) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}

type Service interface {
	Create(ctx context.Context, demandType *DemandType) (*DemandType, error)
	Get(ctx context.Context, typeID string) (*DemandType, error)
	// Exists reports whether typeID is in the catalog. Lookup failures count
	// as unknown; callers only use this for advisory warnings.
	Exists(ctx context.Context, typeID string) bool
	List(ctx context.Context) ([]*DemandType, error)
	Update(ctx context.Context, demandType *DemandType) (*DemandType, error)
	Delete(ctx context.Context, id int64) error
}

var (
	ErrMissingTypeID = errors.New("missing_type_id")
	ErrNotFound      = errors.New("demand_type_not_found")
	ErrDuplicate     = errors.New("demand_type_exists")
)
