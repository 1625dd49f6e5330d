package db

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// textTime implements sql.Scanner for datetimes stored as RFC3339 TEXT.
// NULL or empty text leaves Valid false.
type textTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner. Accepts string, []byte, time.Time or nil.
func (t *textTime) Scan(value any) error {
	t.Time, t.Valid = time.Time{}, false
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into textTime", value)
	}
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time, t.Valid = parsed, true
	return nil
}

// Ptr returns nil when not Valid.
func (t textTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Value implements driver.Valuer.
func (t textTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return formatTime(t.Time), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
