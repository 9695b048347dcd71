package ingest

import (
	"context"

	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
)

// Subscriber is a downstream forwarding target. Every stored notification is
// handed to each subscriber synchronously, in registration order. Delivery is
// best-effort single-shot; there is no retry queue.
type Subscriber interface {
	Name() string
	Process(ctx context.Context, notification *demanddomain.Notification) error
}
