package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/opencitizen/notifstore/internal/clock"
	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	demandtypedomain "github.com/opencitizen/notifstore/internal/demandtype/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	"github.com/opencitizen/notifstore/internal/observability"
)

// Validation warning details. Warnings never block storage.
const (
	warnDemandIDMandatory     = "notification demand_id field is mandatory"
	warnDemandTypeIDMandatory = "notification demand_type_id field is mandatory"
	warnConnectionIDMandatory = "notification connection_id field is mandatory"
)

// Result is the terminal outcome of one ingestion attempt.
type Result struct {
	Ack        AckDocument
	HTTPStatus int
	Stored     *demanddomain.IngestResult
}

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Demands     demanddomain.Service
	Events      eventdomain.Service
	DemandTypes demandtypedomain.Service
	Resolver    IdentityResolver        `optional:"true"`
	Subscribers []Subscriber            `group:"subscribers"`
	Metrics     *observability.Metrics  `optional:"true"`
}

// Engine orchestrates one ingestion attempt end to end: parse, identity
// resolution, validation, storage, audit event, subscriber fan-out,
// acknowledgement.
type Engine struct {
	log         *zap.Logger
	clock       clock.Clock
	demands     demanddomain.Service
	events      eventdomain.Service
	demandTypes demandtypedomain.Service
	resolver    IdentityResolver
	subscribers []Subscriber
	metrics     *observability.Metrics
}

func New(p Params) *Engine {
	return &Engine{
		log:         p.Log.Named("ingest"),
		clock:       p.Clock,
		demands:     p.Demands,
		events:      p.Events,
		demandTypes: p.DemandTypes,
		resolver:    p.Resolver,
		subscribers: p.Subscribers,
		metrics:     p.Metrics,
	}
}

// IngestNotification runs the full pipeline on a raw notification document.
// Every outcome is an acknowledgement document plus an HTTP status; callers
// never see internal errors directly.
func (e *Engine) IngestNotification(ctx context.Context, body []byte) Result {
	incoming, err := parseNotification(body)
	if err != nil {
		e.log.Warn("rejected notification document", zap.Error(err))
		e.recordOutcome(ctx, AckError)
		return Result{Ack: ackFailed(codeParse, err), HTTPStatus: rejectStatus(err)}
	}
	if incoming.Date.IsZero() {
		incoming.Date = e.clock.Now()
	}

	e.resolveCustomer(ctx, &incoming)

	warnings := e.validate(incoming)

	stored, err := e.demands.Ingest(ctx, incoming)
	if err != nil {
		e.log.Error("ingestion storage failure",
			zap.Error(err),
			zap.String("demand_id", incoming.DemandID),
			zap.String("demand_type_id", incoming.DemandTypeID),
		)
		e.recordOutcome(ctx, AckError)
		return Result{Ack: ackFailed(codeStorage, err), HTTPStatus: http.StatusInternalServerError}
	}

	if incoming.Payloads.MyDashboard != nil {
		e.recordDashboardEvent(ctx, incoming, stored.Notification.ID)
	}

	if err := e.forward(ctx, stored.Notification); err != nil {
		// A subscriber failure fails the whole request even though storage
		// already succeeded. Known asymmetry of the forwarding contract.
		e.recordOutcome(ctx, AckError)
		return Result{Ack: ackFailed(codeForward, err), HTTPStatus: http.StatusInternalServerError, Stored: &stored}
	}

	e.log.Info("notification ingested",
		zap.String("demand_id", incoming.DemandID),
		zap.String("demand_type_id", incoming.DemandTypeID),
		zap.Int64("notification_id", stored.Notification.ID),
		zap.Bool("demand_created", stored.Created),
		zap.Int("warnings", len(warnings)),
	)

	if len(warnings) > 0 {
		e.recordOutcome(ctx, AckWarning)
		return Result{Ack: ackWithWarnings(warnings), HTTPStatus: http.StatusCreated, Stored: &stored}
	}
	e.recordOutcome(ctx, AckReceived)
	return Result{Ack: ackReceived(), HTTPStatus: http.StatusCreated, Stored: &stored}
}

// IngestEvent records a standalone audit event document. No case ledger
// interaction.
func (e *Engine) IngestEvent(ctx context.Context, body []byte) Result {
	event, err := parseEvent(body)
	if err != nil {
		e.log.Warn("rejected event document", zap.Error(err))
		return Result{Ack: ackFailed(codeParse, err), HTTPStatus: rejectStatus(err)}
	}
	if event.EventDate.IsZero() {
		event.EventDate = e.clock.Now()
	}

	if _, err := e.events.Record(ctx, event); err != nil {
		return Result{Ack: ackFailed(codeStorage, err), HTTPStatus: http.StatusInternalServerError}
	}
	if e.metrics != nil {
		e.metrics.RecordEvent(ctx, event.Type, event.Status)
	}
	return Result{Ack: ackReceived(), HTTPStatus: http.StatusCreated}
}

// resolveCustomer enriches the customer reference through the identity
// service when one is configured. Failure or a miss clears the reference;
// identity is best-effort, never fatal.
func (e *Engine) resolveCustomer(ctx context.Context, incoming *demanddomain.IncomingNotification) {
	if e.resolver == nil {
		return
	}

	identity, err := e.resolver.Resolve(ctx, incoming.ConnectionID, incoming.CustomerID)
	if err != nil {
		e.log.Warn("identity resolution failed",
			zap.Error(err),
			zap.String("demand_id", incoming.DemandID),
		)
		identity = nil
	}
	if identity == nil {
		incoming.CustomerID = ""
		incoming.ConnectionID = ""
		return
	}
	incoming.CustomerID = identity.CustomerID
	incoming.ConnectionID = identity.ConnectionID
}

func (e *Engine) validate(incoming demanddomain.IncomingNotification) []StatusMessage {
	var warnings []StatusMessage
	if incoming.DemandID == "" {
		warnings = append(warnings, warning(codeMissingField, warnDemandIDMandatory))
	}
	if incoming.DemandTypeID == "" {
		warnings = append(warnings, warning(codeMissingField, warnDemandTypeIDMandatory))
	}
	if incoming.ConnectionID == "" {
		warnings = append(warnings, warning(codeMissingField, warnConnectionIDMandatory))
	}
	return warnings
}

// recordDashboardEvent synthesizes the audit record for a dashboard-visible
// notification. The deeper checks here only downgrade the event status to
// FAILED; they never affect what was stored.
func (e *Engine) recordDashboardEvent(ctx context.Context, incoming demanddomain.IncomingNotification, notificationID int64) {
	event := &eventdomain.NotificationEvent{
		EventDate:        incoming.Date,
		Type:             eventdomain.TypeDashboard,
		Status:           eventdomain.StatusSuccess,
		DemandID:         incoming.DemandID,
		DemandTypeID:     incoming.DemandTypeID,
		CustomerID:       incoming.CustomerID,
		NotificationDate: incoming.Date,
	}
	if reason := e.auditCheck(ctx, incoming, notificationID); reason != "" {
		event.Status = eventdomain.StatusFailed
		event.Message = reason
	}

	if _, err := e.events.Record(ctx, event); err != nil {
		e.log.Error("record dashboard event",
			zap.Error(err),
			zap.String("demand_id", incoming.DemandID),
		)
		return
	}
	if e.metrics != nil {
		e.metrics.RecordEvent(ctx, event.Type, event.Status)
	}
}

// auditCheck returns an empty string when the notification passes the
// dashboard audit conditions, otherwise a human-readable failure summary.
func (e *Engine) auditCheck(ctx context.Context, incoming demanddomain.IncomingNotification, notificationID int64) string {
	if incoming.ConnectionID == "" {
		return auditFailure(incoming, notificationID, "user connection id is mandatory")
	}
	if incoming.DemandID == "" || incoming.DemandTypeID == "" {
		return auditFailure(incoming, notificationID, "demand id and demand type id are mandatory")
	}
	if _, err := strconv.Atoi(incoming.DemandTypeID); err != nil {
		return auditFailure(incoming, notificationID, "demand type id not found")
	}
	if !e.demandTypes.Exists(ctx, incoming.DemandTypeID) {
		return auditFailure(incoming, notificationID, "demand type id not found")
	}
	return ""
}

func auditFailure(incoming demanddomain.IncomingNotification, notificationID int64, reason string) string {
	return fmt.Sprintf("demand id %s, notification id %d: %s", incoming.DemandID, notificationID, reason)
}

// forward hands the stored notification to every subscriber in registration
// order. The first failure aborts the remaining subscribers and is fatal for
// the request.
func (e *Engine) forward(ctx context.Context, notification *demanddomain.Notification) error {
	for _, sub := range e.subscribers {
		if err := sub.Process(ctx, notification); err != nil {
			e.log.Error("subscriber failed",
				zap.Error(err),
				zap.String("subscriber", sub.Name()),
				zap.Int64("notification_id", notification.ID),
			)
			return fmt.Errorf("subscriber %s: %w", sub.Name(), err)
		}
	}
	return nil
}

func (e *Engine) recordOutcome(ctx context.Context, outcome string) {
	if e.metrics != nil {
		e.metrics.RecordIngest(ctx, outcome)
	}
}

// rejectStatus maps a parse failure to the transport status: malformed or
// structurally invalid documents are the caller's fault, anything else is
// ours.
func rejectStatus(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, errMissingRoot) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
