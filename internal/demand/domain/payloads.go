package domain

import "gorm.io/datatypes"

// Channel identifies the notification medium a payload was produced for.
// Values are persisted with each content row.
type Channel string

const (
	ChannelSMS            Channel = "SMS"
	ChannelCustomerEmail  Channel = "CUSTOMER_EMAIL"
	ChannelBackoffice     Channel = "BACKOFFICE"
	ChannelBroadcastEmail Channel = "BROADCAST_EMAIL"
	ChannelMyDashboard    Channel = "MYDASHBOARD"
)

// Channels lists every supported channel.
func Channels() []Channel {
	return []Channel{ChannelSMS, ChannelCustomerEmail, ChannelBackoffice, ChannelBroadcastEmail, ChannelMyDashboard}
}

func ValidChannel(c Channel) bool {
	switch c {
	case ChannelSMS, ChannelCustomerEmail, ChannelBackoffice, ChannelBroadcastEmail, ChannelMyDashboard:
		return true
	}
	return false
}

// Payloads carries the typed payloads present in one notification event. A
// notification may carry any non-empty subset of channels.
type Payloads struct {
	SMS            *SMSPayload        `json:"sms,omitempty"`
	CustomerEmail  *EmailPayload      `json:"customer_email,omitempty"`
	Backoffice     *BackofficePayload `json:"backoffice,omitempty"`
	BroadcastEmail []BroadcastPayload `json:"broadcast_email,omitempty"`
	MyDashboard    *DashboardPayload  `json:"mydashboard,omitempty"`
}

// Empty reports whether no channel payload is present.
func (p Payloads) Empty() bool {
	return p.SMS == nil && p.CustomerEmail == nil && p.Backoffice == nil &&
		len(p.BroadcastEmail) == 0 && p.MyDashboard == nil
}

type SMSPayload struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

type EmailPayload struct {
	SenderName  string `json:"sender_name,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject,omitempty"`
	Message     string `json:"message"`
	CC          string `json:"cc,omitempty"`
	BCC         string `json:"bcc,omitempty"`
}

type BackofficePayload struct {
	Message      string `json:"message"`
	StatusText   string `json:"status_text,omitempty"`
	DisplayLevel string `json:"display_level,omitempty"`
}

type BroadcastPayload struct {
	SenderName  string `json:"sender_name,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject,omitempty"`
	Message     string `json:"message"`
}

// DashboardPayload is the only channel that carries case status information:
// either an explicit generic status id, or a free-text label resolved through
// the status registry.
type DashboardPayload struct {
	StatusID   int               `json:"status_id,omitempty"`
	StatusText string            `json:"status_text,omitempty"`
	SenderName string            `json:"sender_name,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Message    string            `json:"message,omitempty"`
	Data       datatypes.JSONMap `json:"data,omitempty"`
}
