package domain

import (
	"context"
	"time"

	"github.com/opencitizen/notifstore/pkg/db/pagination"
)

// IncomingNotification is the internal shape of one notification event after
// parsing and identity resolution, before persistence.
type IncomingNotification struct {
	DemandID     string
	DemandTypeID string
	SubtypeID    string
	Reference    string
	// StatusID is the generic status id declared by the demand descriptor
	// itself, when the upstream system sends one.
	StatusID     int
	CustomerID   string
	ConnectionID string
	MaxSteps     int
	CurrentStep  int
	Date         time.Time
	Payloads     Payloads
}

// IngestResult reports what the case ledger did with an incoming
// notification.
type IngestResult struct {
	Demand       *Demand
	Notification *Notification
	Created      bool
}

type ListDemandsRequest struct {
	CustomerID   string
	Reference    string
	DemandTypeID string
	PageToken    string
	PageSize     int
}

type ListDemandsResponse struct {
	pagination.PageInfo
	Demands []Demand `json:"demands"`
}

type Service interface {
	// Ingest resolves or creates the case an incoming notification belongs
	// to, reconciles its generic status, and persists the notification and
	// its channel payloads.
	Ingest(ctx context.Context, incoming IncomingNotification) (IngestResult, error)

	Get(ctx context.Context, demandID, demandTypeID string) (*Demand, error)
	List(ctx context.Context, req ListDemandsRequest) (ListDemandsResponse, error)

	// Notifications lists stored notifications with their decoded payloads,
	// filtered by demand, date range or channel.
	Notifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)

	// Remove deletes a case and cascades to its notifications, payload
	// contents and audit events. Administrative/erasure path.
	Remove(ctx context.Context, demandID, demandTypeID string) error
}
