package dto

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date rendered as ISO-8601 (yyyy-mm-dd) on the wire.
type Date struct {
	time.Time
}

// NewDate truncates the given instant to a UTC calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a quoted yyyy-mm-dd string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts a quoted yyyy-mm-dd string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*d = Date{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid date %s", raw)
	}
	t, err := time.ParseInLocation(dateLayout, raw[1:len(raw)-1], time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", raw, err)
	}
	d.Time = t
	return nil
}
