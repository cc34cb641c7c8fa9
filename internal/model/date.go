package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date kept in its YYYY-MM-DD text form.
// Drivers hand DATE columns back as time.Time, []byte or string; all of them
// scan to the same text so values round-trip unchanged.
type Date string

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(DateLayout))
	case []byte:
		*d = normalizeDate(string(v))
	case string:
		*d = normalizeDate(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

func (d Date) String() string {
	return string(d)
}

func normalizeDate(s string) Date {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return Date(s)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04:05-07:00"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Date(t.Format(DateLayout))
		}
	}
	return Date(s)
}
