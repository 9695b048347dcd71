package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opencitizen/notifstore/internal/clock"
	contentdomain "github.com/opencitizen/notifstore/internal/content/domain"
	"github.com/opencitizen/notifstore/internal/demand/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	"github.com/opencitizen/notifstore/internal/genericstatus"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
	"github.com/opencitizen/notifstore/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Contents contentdomain.Store
	Statuses statusdomain.Service
	Events   eventdomain.Service
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	contents contentdomain.Store
	statuses statusdomain.Service
	events   eventdomain.Service
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("demand.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		contents: p.Contents,
		statuses: p.Statuses,
		events:   p.Events,
	}
}

func (s *service) Ingest(ctx context.Context, incoming domain.IncomingNotification) (domain.IngestResult, error) {
	// Mandatory-field policy lives with the caller; blank identifiers are
	// stored as-is and only surface as validation warnings upstream.
	existing, err := s.repo.FindByNaturalKey(ctx, s.db, incoming.DemandID, incoming.DemandTypeID)
	if err != nil {
		return domain.IngestResult{}, err
	}

	var (
		demand  *domain.Demand
		created bool
	)
	switch {
	case existing == nil:
		demand, err = s.create(ctx, incoming)
		created = true
	case existing.CustomerID != "" && existing.CustomerID != incoming.CustomerID:
		// A stored case already belongs to a customer and the incoming
		// reference differs, including the empty reference left after a
		// failed identity lookup. The stored case is never merged or
		// reassigned; the notification opens a fresh case instance.
		s.log.Warn("customer mismatch on stored case, opening new instance",
			zap.String("demand_id", incoming.DemandID),
			zap.String("demand_type_id", incoming.DemandTypeID),
		)
		demand, err = s.create(ctx, incoming)
		created = true
	default:
		demand, err = s.update(ctx, existing, incoming)
	}
	if err != nil {
		return domain.IngestResult{}, err
	}

	notification := &domain.Notification{
		DemandID:     demand.DemandID,
		DemandTypeID: demand.DemandTypeID,
		CustomerID:   demand.CustomerID,
		Date:         incoming.Date,
		Payloads:     incoming.Payloads,
	}
	if err := s.repo.InsertNotification(ctx, s.db, notification); err != nil {
		return domain.IngestResult{}, err
	}
	if _, err := s.contents.PutAll(ctx, notification); err != nil {
		return domain.IngestResult{}, err
	}

	return domain.IngestResult{Demand: demand, Notification: notification, Created: created}, nil
}

func (s *service) create(ctx context.Context, incoming domain.IncomingNotification) (*domain.Demand, error) {
	now := s.clock.Now()
	demand := &domain.Demand{
		DemandID:     incoming.DemandID,
		DemandTypeID: incoming.DemandTypeID,
		SubtypeID:    incoming.SubtypeID,
		Reference:    incoming.Reference,
		StatusID:     incoming.StatusID,
		CustomerID:   incoming.CustomerID,
		ConnectionID: incoming.ConnectionID,
		CreationDate: incoming.Date,
		MaxSteps:     incoming.MaxSteps,
		CurrentStep:  incoming.CurrentStep,
		ModifyDate:   now,
	}
	if incoming.Payloads.MyDashboard != nil {
		statusID, err := s.resolveStatus(ctx, incoming)
		if err != nil {
			return nil, err
		}
		demand.StatusID = statusID
	}
	if err := s.repo.Insert(ctx, s.db, demand); err != nil {
		return nil, err
	}
	return demand, nil
}

func (s *service) update(ctx context.Context, demand *domain.Demand, incoming domain.IncomingNotification) (*domain.Demand, error) {
	oldStatus := demand.StatusID
	newStatus := oldStatus
	if incoming.Payloads.MyDashboard != nil {
		resolved, err := s.resolveStatus(ctx, incoming)
		if err != nil {
			return nil, err
		}
		newStatus = resolved
	}

	demand.StatusID = newStatus
	if incoming.CustomerID != "" {
		demand.CustomerID = incoming.CustomerID
	}
	if demand.ConnectionID == "" {
		demand.ConnectionID = incoming.ConnectionID
	}
	if incoming.SubtypeID != "" {
		demand.SubtypeID = incoming.SubtypeID
	}
	demand.CurrentStep = incoming.CurrentStep
	demand.ModifyDate = s.clock.Now()
	s.applyClosure(demand, oldStatus, newStatus, incoming.Date)

	if err := s.repo.Update(ctx, s.db, demand); err != nil {
		return nil, err
	}
	return demand, nil
}

// applyClosure keeps the closure date consistent with transitions across the
// open/final boundary. A move into a final status stamps the notification
// date; a move back out of a final status reopens the case. Transitions where
// either side is not a known generic status leave the closure date alone.
func (s *service) applyClosure(demand *domain.Demand, oldStatus, newStatus int, date time.Time) {
	if !genericstatus.Exists(oldStatus) || !genericstatus.Exists(newStatus) {
		return
	}
	wasFinal := genericstatus.IsFinal(oldStatus)
	isFinal := genericstatus.IsFinal(newStatus)
	switch {
	case !wasFinal && isFinal:
		d := date
		demand.ClosureDate = &d
	case wasFinal && !isFinal:
		demand.ClosureDate = nil
	}
}

// resolveStatus computes the generic status of a notification carrying a
// dashboard payload. The demand descriptor's own status id wins when it is a
// known generic status; then the dashboard payload's status id; last resort
// is the registry lookup of the dashboard label, which registers unseen
// labels and yields Unknown until an operator maps them.
func (s *service) resolveStatus(ctx context.Context, incoming domain.IncomingNotification) (int, error) {
	if genericstatus.Exists(incoming.StatusID) {
		return incoming.StatusID, nil
	}
	dashboard := incoming.Payloads.MyDashboard
	resolution, err := s.statuses.Resolve(ctx, dashboard.StatusID, dashboard.StatusText)
	if err != nil {
		return int(genericstatus.Unknown), err
	}
	return resolution.GenericStatusID, nil
}

func (s *service) Get(ctx context.Context, demandID, demandTypeID string) (*domain.Demand, error) {
	demand, err := s.repo.FindByNaturalKey(ctx, s.db, demandID, demandTypeID)
	if err != nil {
		return nil, err
	}
	if demand == nil {
		return nil, domain.ErrNotFound
	}

	notifications, err := s.repo.NotificationsByDemand(ctx, s.db, demandID, demandTypeID)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		payloads, err := s.contents.GetAll(ctx, notifications[i].ID)
		if err != nil {
			return nil, err
		}
		notifications[i].Payloads = payloads
	}
	demand.Notifications = notifications
	return demand, nil
}

func (s *service) Notifications(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	notifications, err := s.repo.NotificationsByFilter(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		payloads, err := s.contents.GetAll(ctx, notifications[i].ID, filter.Channels...)
		if err != nil {
			return nil, err
		}
		notifications[i].Payloads = payloads
	}
	return notifications, nil
}

func (s *service) List(ctx context.Context, req domain.ListDemandsRequest) (domain.ListDemandsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	if page.PageSize <= 0 {
		page.PageSize = pagination.DefaultPageSize
	}

	demands, err := s.repo.ListByFilter(ctx, s.db, domain.DemandFilter{
		CustomerID:   req.CustomerID,
		Reference:    req.Reference,
		DemandTypeID: req.DemandTypeID,
	}, page)
	if err != nil {
		return domain.ListDemandsResponse{}, err
	}

	info := pagination.BuildCursorPageInfo(demands, page.PageSize, func(d *domain.Demand) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        strconv.FormatInt(d.UID, 10),
			CreatedAt: d.CreationDate.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(demands) > page.PageSize {
		demands = demands[:page.PageSize]
	}

	resp := domain.ListDemandsResponse{PageInfo: *info}
	resp.Demands = make([]domain.Demand, 0, len(demands))
	for _, d := range demands {
		resp.Demands = append(resp.Demands, *d)
	}
	return resp, nil
}

func (s *service) Remove(ctx context.Context, demandID, demandTypeID string) error {
	demand, err := s.repo.FindByNaturalKey(ctx, s.db, demandID, demandTypeID)
	if err != nil {
		return err
	}
	if demand == nil {
		return domain.ErrNotFound
	}

	notifications, err := s.repo.NotificationsByDemand(ctx, s.db, demandID, demandTypeID)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if err := s.contents.DeleteByNotification(ctx, n.ID); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteNotificationsByDemand(ctx, s.db, demandID, demandTypeID); err != nil {
		return err
	}
	if err := s.events.DeleteByDemand(ctx, demandID, demandTypeID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, demandID, demandTypeID); err != nil {
		return err
	}

	s.log.Info("removed demand and dependents",
		zap.String("demand_id", demandID),
		zap.String("demand_type_id", demandTypeID),
		zap.Int("notifications", len(notifications)),
	)
	return nil
}
