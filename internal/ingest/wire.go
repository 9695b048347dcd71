package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
)

// Wire shapes follow the upstream contract: documents are root-wrapped and
// unknown fields are ignored. Dates travel as Unix milliseconds.

type notificationEnvelope struct {
	Notification *wireNotification `json:"notification"`
}

type wireNotification struct {
	Date   int64      `json:"date"`
	Demand wireDemand `json:"demand"`

	SMS            *demanddomain.SMSPayload        `json:"sms"`
	CustomerEmail  *demanddomain.EmailPayload      `json:"customer_email"`
	Backoffice     *demanddomain.BackofficePayload `json:"backoffice"`
	BroadcastEmail []demanddomain.BroadcastPayload `json:"broadcast_email"`
	MyDashboard    *demanddomain.DashboardPayload  `json:"mydashboard"`
}

type wireDemand struct {
	ID          string        `json:"id"`
	TypeID      string        `json:"type_id"`
	SubtypeID   string        `json:"subtype_id"`
	Reference   string        `json:"reference"`
	StatusID    int           `json:"status_id"`
	MaxSteps    int           `json:"max_steps"`
	CurrentStep int           `json:"current_step"`
	Customer    *wireCustomer `json:"customer"`
}

type wireCustomer struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connection_id"`
}

type eventEnvelope struct {
	NotificationEvent *wireEvent `json:"notification_event"`
}

type wireEvent struct {
	Event            wireEventBody `json:"event"`
	MsgID            string        `json:"msg_id"`
	Demand           wireDemand    `json:"demand"`
	NotificationDate int64         `json:"notification_date"`
}

type wireEventBody struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	Redelivery int    `json:"redelivery"`
	Message    string `json:"message"`
	EventDate  int64  `json:"event_date"`
}

var errMissingRoot = errors.New("missing document root")

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func decodeStrictRoot(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	return dec.Decode(v)
}

// parseNotification turns a root-wrapped notification document into the
// internal shape. A document without the notification root is structurally
// invalid even when it is well-formed JSON.
func parseNotification(body []byte) (demanddomain.IncomingNotification, error) {
	var envelope notificationEnvelope
	if err := decodeStrictRoot(body, &envelope); err != nil {
		return demanddomain.IncomingNotification{}, err
	}
	if envelope.Notification == nil {
		return demanddomain.IncomingNotification{}, errMissingRoot
	}

	wire := envelope.Notification
	incoming := demanddomain.IncomingNotification{
		DemandID:     wire.Demand.ID,
		DemandTypeID: wire.Demand.TypeID,
		SubtypeID:    wire.Demand.SubtypeID,
		Reference:    wire.Demand.Reference,
		StatusID:     wire.Demand.StatusID,
		MaxSteps:     wire.Demand.MaxSteps,
		CurrentStep:  wire.Demand.CurrentStep,
		Date:         fromMillis(wire.Date),
		Payloads: demanddomain.Payloads{
			SMS:            wire.SMS,
			CustomerEmail:  wire.CustomerEmail,
			Backoffice:     wire.Backoffice,
			BroadcastEmail: wire.BroadcastEmail,
			MyDashboard:    wire.MyDashboard,
		},
	}
	if wire.Demand.Customer != nil {
		incoming.CustomerID = wire.Demand.Customer.ID
		incoming.ConnectionID = wire.Demand.Customer.ConnectionID
	}
	return incoming, nil
}

// parseEvent turns a root-wrapped standalone event document into an audit
// record with the demand reference denormalized.
func parseEvent(body []byte) (*eventdomain.NotificationEvent, error) {
	var envelope eventEnvelope
	if err := decodeStrictRoot(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.NotificationEvent == nil {
		return nil, errMissingRoot
	}

	wire := envelope.NotificationEvent
	event := &eventdomain.NotificationEvent{
		EventDate:        fromMillis(wire.Event.EventDate),
		Type:             wire.Event.Type,
		Status:           wire.Event.Status,
		Redelivery:       wire.Event.Redelivery,
		Message:          wire.Event.Message,
		MessageID:        wire.MsgID,
		DemandID:         wire.Demand.ID,
		DemandTypeID:     wire.Demand.TypeID,
		NotificationDate: fromMillis(wire.NotificationDate),
	}
	if wire.Demand.Customer != nil {
		event.CustomerID = wire.Demand.Customer.ID
	}
	return event, nil
}
