// internal/domain/event/event.go
package event

import (
	"context"
	"time"
)

const (
	RoutingKeyExpiryNotified    = "membership.expiry_notified"
	RoutingKeyPurchaseConfirmed = "order.purchase_confirmed"
)

// Publisher delivers domain events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type MembershipExpiryNotified struct {
	EventID    string    `json:"event_id"`
	OrderID    int64     `json:"order_id"`
	MemberID   int64     `json:"member_id"`
	CenterID   int64     `json:"center_id"`
	EndDate    string    `json:"end_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PurchaseConfirmed struct {
	EventID     string    `json:"event_id"`
	MemberID    int64     `json:"member_id"`
	DetailIDs   []int64   `json:"detail_ids"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
