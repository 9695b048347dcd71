package domain

import (
	"errors"
	"time"
)

// Demand is one administrative case. Its natural key is the pair
// (demand id, demand type id) assigned by the upstream system; UID is the
// storage surrogate. The pair is deliberately not unique in storage: an
// incoming notification whose customer conflicts with the stored case opens
// a fresh case instance instead of merging, so lookups return the most
// recently created row for the pair.
type Demand struct {
	UID          int64      `gorm:"primaryKey;autoIncrement" json:"uid"`
	DemandID     string     `gorm:"column:demand_id;not null;index:idx_demands_natural,priority:1" json:"demand_id"`
	DemandTypeID string     `gorm:"column:demand_type_id;not null;index:idx_demands_natural,priority:2" json:"demand_type_id"`
	SubtypeID    string     `gorm:"column:subtype_id" json:"subtype_id,omitempty"`
	Reference    string     `gorm:"column:reference" json:"reference,omitempty"`
	StatusID     int        `gorm:"column:status_id;not null;default:-1" json:"status_id"`
	CustomerID   string     `gorm:"column:customer_id;index" json:"customer_id,omitempty"`
	ConnectionID string     `gorm:"column:connection_id" json:"connection_id,omitempty"`
	CreationDate time.Time  `gorm:"column:creation_date;not null" json:"creation_date"`
	ClosureDate  *time.Time `gorm:"column:closure_date" json:"closure_date,omitempty"`
	MaxSteps     int        `gorm:"column:max_steps" json:"max_steps,omitempty"`
	CurrentStep  int        `gorm:"column:current_step" json:"current_step,omitempty"`
	ModifyDate   time.Time  `gorm:"column:modify_date;not null" json:"modify_date"`

	Notifications []Notification `gorm:"-" json:"notifications,omitempty"`
}

func (Demand) TableName() string {
	return "demands"
}

// Open reports whether the case has no closure date.
func (d *Demand) Open() bool {
	return d.ClosureDate == nil || d.ClosureDate.IsZero()
}

// Notification is one delivery event tied to a case. The id is allocated by
// the storage layer's sequence, which keeps allocation atomic under
// concurrent ingestion.
type Notification struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DemandID     string    `gorm:"column:demand_id;not null;index:idx_notifications_demand,priority:1" json:"demand_id"`
	DemandTypeID string    `gorm:"column:demand_type_id;not null;index:idx_notifications_demand,priority:2" json:"demand_type_id"`
	CustomerID   string    `gorm:"column:customer_id" json:"customer_id,omitempty"`
	Date         time.Time `gorm:"column:date;not null" json:"date"`

	Payloads Payloads `gorm:"-" json:"payloads,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

var (
	ErrMissingDemandID   = errors.New("missing_demand_id")
	ErrMissingDemandType = errors.New("missing_demand_type_id")
	ErrNotFound          = errors.New("demand_not_found")
)
