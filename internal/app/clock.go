package app

import "time"

// Clock is the single wall-clock source of a run. Read predicates and write
// timestamps of one run are derived from the same Now() value.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the server's local time, truncated to whole seconds to
// match the store's DATETIME precision.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CompactLayout is the YYYYMMDDHHmmss stamp used for run identifiers.
const CompactLayout = "20060102150405"

// RunID tags the log lines of one job run.
func RunID(jobName string, t time.Time) string {
	return jobName + "-" + t.Format(CompactLayout)
}
