package variableitem

import (
	"testing"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestValidate(t *testing.T) {
	req := CreateRequest{
		EmployeeID: "123e4567-e89b-12d3-a456-426614174000",
		YearMonth:  "2025-06",
		Category:   CategoryDeduction,
		Amount:     decimal.NewFromInt(-50),
		Label:      "Meal vouchers",
	}
	require.NoError(t, req.Validate())

	// A positive deduction is only a hint, not a rule.
	req.Amount = decimal.NewFromInt(50)
	require.NoError(t, req.Validate())

	bad := CreateRequest{YearMonth: "2025-13", Category: "tip"}
	err := bad.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "year_month")
	assert.Contains(t, fields, "label")
	assert.Equal(t, "is not a known category", fields["category"])
	assert.Equal(t, "must not be zero", fields["amount"])
}

func TestUpdateRequestValidate(t *testing.T) {
	amount := decimal.NewFromInt(10)
	req := UpdateRequest{ID: "123e4567-e89b-12d3-a456-426614174000", Amount: &amount}
	require.NoError(t, req.Validate())

	empty := UpdateRequest{ID: req.ID}
	assert.Error(t, empty.Validate())

	cents := decimal.RequireFromString("10.005")
	tooPrecise := UpdateRequest{ID: req.ID, Amount: &cents}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, tooPrecise.Validate(), &verrs)
	assert.Equal(t, "must have at most 2 decimal places", verrs.ToMap()["amount"])
}

func TestCreateRequestValidate_AmountPrecision(t *testing.T) {
	req := CreateRequest{
		EmployeeID: "123e4567-e89b-12d3-a456-426614174000",
		YearMonth:  "2025-06",
		Category:   CategoryBonus,
		Amount:     decimal.RequireFromString("99.999"),
		Label:      "Bonus",
	}

	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.Contains(t, verrs.ToMap(), "amount")

	req.Amount = decimal.RequireFromString("99.990")
	assert.NoError(t, req.Validate())
}

func TestCategoryHints(t *testing.T) {
	assert.Equal(t, -1, CategoryDeduction.ExpectedSign())
	assert.Equal(t, 1, CategoryBonus.ExpectedSign())
	assert.True(t, CategoryTransportAllowance.Valid())
	assert.False(t, Category("tip").Valid())
}

func TestTotal(t *testing.T) {
	items := []VariableItem{
		{Amount: decimal.RequireFromString("150.50")},
		{Amount: decimal.RequireFromString("-20.25")},
	}
	assert.Equal(t, "130.25", Total(items).String())
	assert.True(t, Total(nil).IsZero())
}
