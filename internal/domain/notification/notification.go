// internal/domain/notification/notification.go
package notification

import (
	"fmt"
	"time"
)

const windowLayout = "2006-01-02"

// Notification is a single inbox entry for a franchise center.
// Corresponds to the 'notifications' table.
type Notification struct {
	ID          int64
	RecipientID int64  // center that owns the order
	OrderID     int64  // source membership order
	Window      Window // end date of the membership the notification refers to
	Type        Type
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

// WindowFor normalizes an end date to its calendar day.
func WindowFor(endDate time.Time) Window {
	return Window(endDate.Format(windowLayout))
}

// NewMembershipExpiry builds the fixed-template expiry notice for a member.
func NewMembershipExpiry(centerID, orderID int64, memberName string, endDate, createdAt time.Time) *Notification {
	return &Notification{
		RecipientID: centerID,
		OrderID:     orderID,
		Window:      WindowFor(endDate),
		Type:        TypeMembershipExpiry,
		Title:       "Membership expiring soon",
		Message:     fmt.Sprintf("The membership of %s expires on %s. Please contact the member about renewal.", memberName, endDate.Format(windowLayout)),
		IsRead:      false,
		CreatedAt:   createdAt,
	}
}
