package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Policy holds the ledger rules: accrual rates and the absence-type table.
type Policy struct {
	PaidLeave    PaidLeavePolicy     `mapstructure:"paid_leave"`
	Annual       AnnualPolicy        `mapstructure:"annual"`
	AbsenceTypes []AbsenceTypePolicy `mapstructure:"absence_types"`
}

type PaidLeavePolicy struct {
	BaseMonthlyRate  float64 `mapstructure:"base_monthly_rate"`
	PeriodStartMonth int     `mapstructure:"period_start_month"`
}

type AnnualPolicy struct {
	AllocationDays float64 `mapstructure:"allocation_days"`
}

type AbsenceTypePolicy struct {
	Code                  string `mapstructure:"code"`
	Label                 string `mapstructure:"label"`
	Counter               string `mapstructure:"counter"` // paid_leave, annual or none
	RequiresJustification bool   `mapstructure:"requires_justification"`
}

func defaultAbsenceTypes() []map[string]interface{} {
	return []map[string]interface{}{
		{"code": "paid_leave", "label": "Paid leave", "counter": "paid_leave", "requires_justification": false},
		{"code": "annual_leave", "label": "Annual leave day", "counter": "annual", "requires_justification": false},
		{"code": "sick", "label": "Sick leave", "counter": "none", "requires_justification": true},
		{"code": "family_event", "label": "Family event", "counter": "none", "requires_justification": true},
		{"code": "unpaid", "label": "Unpaid leave", "counter": "none", "requires_justification": false},
	}
}

// LoadPolicy reads the policy file at path (any format viper understands) on top of
// built-in defaults. An empty path uses the defaults. Env overrides use prefix LEDGER_.
func LoadPolicy(path string) (Policy, error) {
	v := viper.New()

	v.SetDefault("paid_leave.base_monthly_rate", 2.5)
	v.SetDefault("paid_leave.period_start_month", 6)
	v.SetDefault("annual.allocation_days", 10)
	v.SetDefault("absence_types", defaultAbsenceTypes())

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Policy{}, fmt.Errorf("read policy file: %w", err)
		}
	}

	var p Policy
	if err := v.Unmarshal(&p); err != nil {
		return Policy{}, fmt.Errorf("unmarshal policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.PaidLeave.BaseMonthlyRate < 0 {
		return fmt.Errorf("paid_leave.base_monthly_rate must not be negative")
	}
	if p.PaidLeave.PeriodStartMonth < 1 || p.PaidLeave.PeriodStartMonth > 12 {
		return fmt.Errorf("paid_leave.period_start_month must be between 1 and 12")
	}
	if p.Annual.AllocationDays < 0 {
		return fmt.Errorf("annual.allocation_days must not be negative")
	}

	seen := make(map[string]bool, len(p.AbsenceTypes))
	for _, t := range p.AbsenceTypes {
		if t.Code == "" {
			return fmt.Errorf("absence type code is required")
		}
		if seen[t.Code] {
			return fmt.Errorf("duplicate absence type %q", t.Code)
		}
		seen[t.Code] = true
		switch t.Counter {
		case "paid_leave", "annual", "none":
		default:
			return fmt.Errorf("absence type %q: counter must be paid_leave, annual or none", t.Code)
		}
	}
	return nil
}
