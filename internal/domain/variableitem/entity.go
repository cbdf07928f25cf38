package variableitem

import (
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryBonus                Category = "bonus"
	CategoryExceptionalBonus     Category = "exceptional_bonus"
	CategoryAdvance              Category = "advance"
	CategoryDrawDown             Category = "draw_down"
	CategoryExpenseReimbursement Category = "expense_reimbursement"
	CategoryTransportAllowance   Category = "transport_allowance"
	CategoryDeduction            Category = "deduction"
)

func AllCategories() []Category {
	return []Category{
		CategoryBonus,
		CategoryExceptionalBonus,
		CategoryAdvance,
		CategoryDrawDown,
		CategoryExpenseReimbursement,
		CategoryTransportAllowance,
		CategoryDeduction,
	}
}

func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ExpectedSign is a display hint only; amounts of any sign are accepted.
func (c Category) ExpectedSign() int {
	if c == CategoryDeduction {
		return -1
	}
	return 1
}

// AmountPlaces is the precision amounts are stored at.
const AmountPlaces = 2

type Status string

const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
)

// VariableItem is one variable pay entry of an employee for a month.
type VariableItem struct {
	ID              string
	EmployeeID      string
	YearMonth       calendar.YearMonth
	ConsolidationID *string
	Category        Category
	Amount          decimal.Decimal
	Label           string
	Description     *string
	Status          Status
	ValidatedBy     *string
	ValidatedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Total sums the amounts of items.
func Total(items []VariableItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
