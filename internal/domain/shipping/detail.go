package shipping

import "time"

// ConfirmCandidate is a delivered detail row whose grace period has elapsed.
type ConfirmCandidate struct {
	DetailID             int64
	OrderID              int64
	MemberID             int64 // owner of the parent order; recorded as the modifying actor
	ShippingCompleteTime time.Time
}

// MemberGroup holds the detail rows confirmed with a single update.
type MemberGroup struct {
	MemberID  int64
	DetailIDs []int64
}

// GroupByMember groups candidates by owning member, keeping first-seen order.
func GroupByMember(candidates []*ConfirmCandidate) []*MemberGroup {
	groups := make([]*MemberGroup, 0)
	index := make(map[int64]*MemberGroup)
	for _, c := range candidates {
		g, ok := index[c.MemberID]
		if !ok {
			g = &MemberGroup{MemberID: c.MemberID}
			index[c.MemberID] = g
			groups = append(groups, g)
		}
		g.DetailIDs = append(g.DetailIDs, c.DetailID)
	}
	return groups
}
