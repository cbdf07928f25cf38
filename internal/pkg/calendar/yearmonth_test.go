package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2025-06")
	require.NoError(t, err)
	assert.Equal(t, NewYearMonth(2025, time.June), ym)
	assert.Equal(t, "2025-06", ym.String())

	for _, bad := range []string{"", "2025-13", "2025/06", "25-06", "2025-6-1"} {
		_, err := ParseYearMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestYearMonth_Days(t *testing.T) {
	cases := []struct {
		ym   YearMonth
		days int
	}{
		{NewYearMonth(2025, time.June), 30},
		{NewYearMonth(2025, time.July), 31},
		{NewYearMonth(2024, time.February), 29},
		{NewYearMonth(2025, time.February), 28},
	}
	for _, c := range cases {
		assert.Equal(t, c.days, c.ym.DaysInMonth(), c.ym.String())
		assert.Equal(t, c.days, c.ym.LastDay().Day())
		assert.Equal(t, 1, c.ym.FirstDay().Day())
	}
}

func TestYearMonth_NextPrev(t *testing.T) {
	dec := NewYearMonth(2025, time.December)
	assert.Equal(t, NewYearMonth(2026, time.January), dec.Next())
	assert.Equal(t, dec, dec.Next().Prev())
	assert.True(t, dec.Before(dec.Next()))
	assert.False(t, dec.Next().Before(dec))
}

func TestYearMonth_JSONAndScan(t *testing.T) {
	payload, err := json.Marshal(struct {
		Month YearMonth `json:"month"`
	}{NewYearMonth(2025, time.March)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2025-03"}`, string(payload))

	var ym YearMonth
	require.NoError(t, ym.Scan([]byte("2024-11")))
	assert.Equal(t, NewYearMonth(2024, time.November), ym)
	assert.Error(t, ym.Scan(42))
}
