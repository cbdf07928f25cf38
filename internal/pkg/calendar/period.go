package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a leave accounting period. An annual period has StartYear == EndYear and a
// key "YYYY"; a paid-leave period spans StartYear's start month to the month before it
// in EndYear and is keyed "YYYY-YYYY".
type Period struct {
	StartYear int
	EndYear   int
	Rolling   bool
}

// PaidLeavePeriod returns the rolling period containing ym for periods opening in startMonth.
func PaidLeavePeriod(ym YearMonth, startMonth time.Month) Period {
	start := ym.Year
	if ym.Month < startMonth {
		start--
	}
	end := start + 1
	if startMonth == time.January {
		end = start
	}
	return Period{StartYear: start, EndYear: end, Rolling: true}
}

func AnnualPeriod(ym YearMonth) Period {
	return Period{StartYear: ym.Year, EndYear: ym.Year}
}

func (p Period) Key() string {
	if !p.Rolling {
		return strconv.Itoa(p.StartYear)
	}
	return fmt.Sprintf("%04d-%04d", p.StartYear, p.EndYear)
}

func (p Period) String() string { return p.Key() }

// Previous returns the period immediately before p.
func (p Period) Previous() Period {
	return Period{StartYear: p.StartYear - 1, EndYear: p.EndYear - 1, Rolling: p.Rolling}
}

// ParsePeriodKey accepts "YYYY" or "YYYY-YYYY" where the end year is the start year or the one after.
func ParsePeriodKey(key string) (Period, error) {
	parts := strings.Split(key, "-")
	switch len(parts) {
	case 1:
		year, err := parseYear(parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("invalid period key %q: %w", key, err)
		}
		return Period{StartYear: year, EndYear: year}, nil
	case 2:
		start, err := parseYear(parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("invalid period key %q: %w", key, err)
		}
		end, err := parseYear(parts[1])
		if err != nil {
			return Period{}, fmt.Errorf("invalid period key %q: %w", key, err)
		}
		if end != start && end != start+1 {
			return Period{}, fmt.Errorf("invalid period key %q: end year must follow start year", key)
		}
		return Period{StartYear: start, EndYear: end, Rolling: true}, nil
	default:
		return Period{}, fmt.Errorf("invalid period key %q: expected YYYY or YYYY-YYYY", key)
	}
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("year %q must have four digits", s)
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 {
		return 0, fmt.Errorf("year %q is not valid", s)
	}
	return year, nil
}
