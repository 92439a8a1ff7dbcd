package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the fixed-width format used for every time value sent to
// or read from the store (YYYY-MM-DD HH:mm:ss, server-local wall clock).
const TimestampLayout = "2006-01-02 15:04:05"

// Dialect adapts the portable '?'-placeholder queries of this package to a driver.
type Dialect struct {
	driver string
}

func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
		return Dialect{driver: driver}, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func (d Dialect) Driver() string { return d.driver }

// Rebind rewrites '?' placeholders to '$n' for PostgreSQL. Queries in this
// package never contain a literal '?'.
func (d Dialect) Rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholders returns "?, ?, ?" for an IN list of n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func formatTime(t time.Time) string {
	return t.Format(TimestampLayout)
}

// dbTime scans DATETIME/DATE/TIMESTAMP columns regardless of how the driver
// surfaces them (time.Time, []byte or string) as a local wall-clock time.
type dbTime struct {
	Time time.Time
}

var timeLayouts = []string{
	TimestampLayout,
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (d *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.Local)
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	case nil:
		return fmt.Errorf("unexpected NULL time value")
	default:
		return fmt.Errorf("unsupported time value of type %T", src)
	}
}

func (d *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unparseable time value %q", s)
}
