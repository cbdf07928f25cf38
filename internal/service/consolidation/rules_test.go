package consolidation

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/config"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRules_FromDefaultPolicy(t *testing.T) {
	policy, err := config.LoadPolicy("")
	require.NoError(t, err)

	rules := NewRules(policy, 4)

	assert.Equal(t, "2.5", rules.PaidLeaveRate.String())
	assert.Equal(t, time.June, rules.PaidLeaveStart)
	assert.Equal(t, "10", rules.AnnualAllocation.String())
	assert.Equal(t, 4, rules.BatchConcurrency)

	paid, ok := rules.Absences.Lookup("paid_leave")
	require.True(t, ok)
	assert.Equal(t, counter.KindPaidLeave, paid.Counter)

	sick, ok := rules.Absences.Lookup("sick")
	require.True(t, ok)
	assert.False(t, sick.DeductsFromCounter())
	assert.True(t, sick.RequiresJustification)
}
