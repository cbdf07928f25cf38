package counter

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// Kind selects the counter family and with it the period semantics.
type Kind string

const (
	// KindPaidLeave accrues monthly over a rolling period keyed "YYYY-YYYY".
	KindPaidLeave Kind = "paid_leave"
	// KindAnnual receives a fixed yearly allocation over a period keyed "YYYY".
	KindAnnual Kind = "annual"
)

func (k Kind) Valid() bool {
	return k == KindPaidLeave || k == KindAnnual
}

// PeriodFor returns the period of kind k that contains ym.
func (k Kind) PeriodFor(ym calendar.YearMonth, paidLeaveStart time.Month) calendar.Period {
	if k == KindAnnual {
		return calendar.AnnualPeriod(ym)
	}
	return calendar.PaidLeavePeriod(ym, paidLeaveStart)
}

// ParsePeriodKey parses key and checks that its shape matches k.
func (k Kind) ParsePeriodKey(key string) (calendar.Period, error) {
	p, err := calendar.ParsePeriodKey(key)
	if err != nil {
		return calendar.Period{}, err
	}
	if p.Rolling != (k == KindPaidLeave) {
		return calendar.Period{}, fmt.Errorf("period key %q does not match counter kind %s", key, k)
	}
	return p, nil
}

type MovementKind string

const (
	MovementAccrual     MovementKind = "accrual"
	MovementConsumption MovementKind = "consumption"
	MovementAdjustment  MovementKind = "adjustment"
	// MovementCarryOver moves the prior period's closing balance into the
	// initial balance. Its source is the prior period key.
	MovementCarryOver MovementKind = "carry_over"
)

// SourceAllocation marks the yearly allocation posted on an annual counter.
const SourceAllocation = "allocation"

// LeaveCounter is the running balance of one employee over one period.
type LeaveCounter struct {
	ID                string
	EmployeeID        string
	Kind              Kind
	PeriodKey         string
	InitialBalance    decimal.Decimal
	Accrued           decimal.Decimal
	Consumed          decimal.Decimal
	ManualAdjustment  decimal.Decimal
	AdjustmentComment *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CurrentBalance is always derived from the four components, never stored.
func (c LeaveCounter) CurrentBalance() decimal.Decimal {
	return c.InitialBalance.Add(c.Accrued).Sub(c.Consumed).Add(c.ManualAdjustment)
}

// Apply adds m to the component its kind targets.
func (c *LeaveCounter) Apply(m Movement) {
	switch m.Kind {
	case MovementCarryOver:
		c.InitialBalance = c.InitialBalance.Add(m.Days)
	case MovementAccrual:
		c.Accrued = c.Accrued.Add(m.Days)
	case MovementConsumption:
		c.Consumed = c.Consumed.Add(m.Days)
	case MovementAdjustment:
		c.ManualAdjustment = c.ManualAdjustment.Add(m.Days)
		if m.Comment != nil {
			comment := *m.Comment
			c.AdjustmentComment = &comment
		}
	}
}

// Movement is one immutable posting against a counter. Corrections are new
// movements with a signed amount, never edits.
type Movement struct {
	ID        string
	CounterID string
	Kind      MovementKind
	Days      decimal.Decimal
	Source    string
	Comment   *string
	ActorID   *string
	CreatedAt time.Time
}

// NetForSource returns accruals minus consumptions posted for source.
func NetForSource(movements []Movement, source string) decimal.Decimal {
	net := decimal.Zero
	for _, m := range movements {
		if m.Source != source {
			continue
		}
		switch m.Kind {
		case MovementAccrual:
			net = net.Add(m.Days)
		case MovementConsumption:
			net = net.Sub(m.Days)
		}
	}
	return net
}

// NetSince returns accruals minus consumptions posted for source months from
// onwards. Allocations and manual adjustments are not month sourced and never count.
func NetSince(movements []Movement, from calendar.YearMonth) decimal.Decimal {
	net := decimal.Zero
	for _, m := range movements {
		ym, err := calendar.ParseYearMonth(m.Source)
		if err != nil || ym.Before(from) {
			continue
		}
		net = net.Add(NetForSource([]Movement{m}, m.Source))
	}
	return net
}

// PostedFor sums the movements of one kind posted for source.
func PostedFor(movements []Movement, kind MovementKind, source string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.Kind == kind && m.Source == source {
			total = total.Add(m.Days)
		}
	}
	return total
}
