// internal/domain/notification/shared_types.go
package notification

// Type classifies a notification for the back-office inbox.
type Type string

const (
	TypeMembershipExpiry Type = "MEMBERSHIP_EXPIRY" // sent to the owning center a few days before end_date
)

// Window identifies the expiry window a notification was sent for.
// Together with the order id it is unique in the notifications table.
type Window string
