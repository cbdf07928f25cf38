package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const yearMonthLayout = "2006-01"

// YearMonth identifies one calendar month, the unit a consolidation covers.
type YearMonth struct {
	Year  int
	Month time.Month
}

func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: expected YYYY-MM", s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

func (ym YearMonth) Valid() bool {
	return ym.Year >= 1900 && ym.Year <= 9999 && ym.Month >= time.January && ym.Month <= time.December
}

// FirstDay returns midnight UTC of the first day of the month.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month.
func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

func (ym YearMonth) DaysInMonth() int {
	return ym.LastDay().Day()
}

func (ym YearMonth) Next() YearMonth {
	return Of(ym.FirstDay().AddDate(0, 1, 0))
}

func (ym YearMonth) Prev() YearMonth {
	return Of(ym.FirstDay().AddDate(0, -1, 0))
}

func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// Value stores the month as its "YYYY-MM" text form.
func (ym YearMonth) Value() (driver.Value, error) {
	return ym.String(), nil
}

func (ym *YearMonth) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return ym.UnmarshalText([]byte(v))
	case []byte:
		return ym.UnmarshalText(v)
	case nil:
		*ym = YearMonth{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into YearMonth", src)
	}
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
