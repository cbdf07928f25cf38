package counter

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCurrentBalanceHoldsAfterEveryMovement(t *testing.T) {
	c := LeaveCounter{InitialBalance: d("3")}
	comment := "carry over fix"

	moves := []Movement{
		{Kind: MovementAccrual, Days: d("2.5")},
		{Kind: MovementConsumption, Days: d("1")},
		{Kind: MovementAdjustment, Days: d("-4"), Comment: &comment},
		{Kind: MovementAccrual, Days: d("-0.5")},
		{Kind: MovementConsumption, Days: d("0.25")},
		{Kind: MovementCarryOver, Days: d("1.5"), Source: "2024-2025"},
	}

	for _, m := range moves {
		c.Apply(m)
		want := c.InitialBalance.Add(c.Accrued).Sub(c.Consumed).Add(c.ManualAdjustment)
		assert.True(t, want.Equal(c.CurrentBalance()), "after %s %s", m.Kind, m.Days)
	}

	assert.Equal(t, "1.25", c.CurrentBalance().String())
	assert.Equal(t, "4.5", c.InitialBalance.String())
	assert.True(t, NetSince(moves, calendar.NewYearMonth(2000, time.January)).IsZero(), "only month sourced movements count")
	require.NotNil(t, c.AdjustmentComment)
	assert.Equal(t, comment, *c.AdjustmentComment)
}

func TestNetForSource(t *testing.T) {
	moves := []Movement{
		{Kind: MovementAccrual, Days: d("2.5"), Source: "2025-06"},
		{Kind: MovementConsumption, Days: d("1"), Source: "2025-06"},
		{Kind: MovementAccrual, Days: d("2.5"), Source: "2025-07"},
		{Kind: MovementAdjustment, Days: d("3"), Source: ""},
		{Kind: MovementAccrual, Days: d("-0.5"), Source: "2025-06"},
	}

	assert.Equal(t, "1", NetForSource(moves, "2025-06").String())
	assert.Equal(t, "2", PostedFor(moves, MovementAccrual, "2025-06").String())
	assert.True(t, NetForSource(moves, "2025-08").IsZero())

	assert.Equal(t, "3.5", NetSince(moves, calendar.NewYearMonth(2025, time.June)).String())
	assert.Equal(t, "2.5", NetSince(moves, calendar.NewYearMonth(2025, time.July)).String())
	assert.True(t, NetSince(append(moves, Movement{Kind: MovementAccrual, Days: d("10"), Source: SourceAllocation}),
		calendar.NewYearMonth(2025, time.August)).IsZero())
}

func TestKindParsePeriodKey(t *testing.T) {
	_, err := KindPaidLeave.ParsePeriodKey("2025-2026")
	assert.NoError(t, err)
	_, err = KindPaidLeave.ParsePeriodKey("2025")
	assert.Error(t, err)
	_, err = KindAnnual.ParsePeriodKey("2025")
	assert.NoError(t, err)
	_, err = KindAnnual.ParsePeriodKey("2025-2026")
	assert.Error(t, err)
}

func TestKindPeriodFor(t *testing.T) {
	ym := calendar.NewYearMonth(2026, time.February)
	assert.Equal(t, "2025-2026", KindPaidLeave.PeriodFor(ym, time.June).Key())
	assert.Equal(t, "2026", KindAnnual.PeriodFor(ym, time.June).Key())
}
