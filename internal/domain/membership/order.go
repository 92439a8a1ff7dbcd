package membership

import (
	"math"
	"time"
)

// ExpiringOrder is an active membership order close to its end date,
// joined with the member's display name.
type ExpiringOrder struct {
	OrderID    int64
	MemberID   int64
	MemberName string
	CenterID   int64
	StartDate  time.Time
	EndDate    time.Time
}

// DaysLeft counts calendar days from now until the end date, as DATEDIFF does.
func (o *ExpiringOrder) DaysLeft(now time.Time) int {
	end := time.Date(o.EndDate.Year(), o.EndDate.Month(), o.EndDate.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Round(end.Sub(today).Hours() / 24))
}
