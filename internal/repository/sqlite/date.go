package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// dateLayout is fixed width so text comparison matches chronological order
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Date stores time.Time as sortable UTC text
type Date time.Time

func (d Date) Value() (driver.Value, error) {
	return time.Time(d).UTC().Format(dateLayout), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date(time.Time{})
		return nil
	case time.Time:
		*d = Date(v.UTC())
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan type %T into Date", value)
	}
}

func (d *Date) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return err
		}
	}
	*d = Date(t.UTC())
	return nil
}

// Time converts back to time.Time
func (d Date) Time() time.Time {
	return time.Time(d)
}

// nullableDate turns an optional time into a goqu value, NULL when absent
func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return Date(*t)
}

func (d *Date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}
