package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)

	assert.Equal(t, 2.5, p.PaidLeave.BaseMonthlyRate)
	assert.Equal(t, 6, p.PaidLeave.PeriodStartMonth)
	assert.Equal(t, 10.0, p.Annual.AllocationDays)
	require.Len(t, p.AbsenceTypes, 5)
	assert.Equal(t, "paid_leave", p.AbsenceTypes[0].Code)
	assert.True(t, p.AbsenceTypes[2].RequiresJustification)
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
paid_leave:
  base_monthly_rate: 2.08
  period_start_month: 1
absence_types:
  - code: cp
    label: Conges payes
    counter: paid_leave
  - code: sick
    label: Sick
    counter: none
    requires_justification: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 2.08, p.PaidLeave.BaseMonthlyRate)
	assert.Equal(t, 1, p.PaidLeave.PeriodStartMonth)
	assert.Equal(t, 10.0, p.Annual.AllocationDays)
	require.Len(t, p.AbsenceTypes, 2)
	assert.Equal(t, "cp", p.AbsenceTypes[0].Code)
}

func TestPolicyValidate(t *testing.T) {
	base := Policy{
		PaidLeave: PaidLeavePolicy{BaseMonthlyRate: 2.5, PeriodStartMonth: 6},
		AbsenceTypes: []AbsenceTypePolicy{
			{Code: "sick", Counter: "none"},
		},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.PaidLeave.PeriodStartMonth = 13
	assert.Error(t, bad.Validate())

	bad = base
	bad.AbsenceTypes = []AbsenceTypePolicy{{Code: "x", Counter: "bank"}}
	assert.Error(t, bad.Validate())

	bad = base
	bad.AbsenceTypes = []AbsenceTypePolicy{{Code: "x", Counter: "none"}, {Code: "x", Counter: "none"}}
	assert.Error(t, bad.Validate())
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		App:          AppConfig{StorageDriver: StorageDriverMemory},
		JWT:          JWTConfig{Secret: "secret"},
		Notification: NotificationConfig{Workers: 1, QueueSize: 10, BatchSize: 5},
		Ledger:       LedgerConfig{BatchConcurrency: 2},
	}
	require.NoError(t, cfg.Validate())

	cfg.App.StorageDriver = StorageDriverPostgres
	assert.EqualError(t, cfg.Validate(), "DB_PASSWORD is required")

	cfg.Database.Password = "pw"
	cfg.JWT.Secret = ""
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET_KEY is required")
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "ledger", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@db:5432/ledger?sslmode=disable", cfg.DatabaseURL())
}

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.yaml")
	content := `
employees:
  - id: 0b9f5c3e-8d7a-4f3c-9a51-6e2d8c1b4a70
    employee_code: EMP-001
    full_name: Ada Martin
    hire_date: "2024-03-16"
  - employee_code: EMP-002
    full_name: Louis Bernard
    hire_date: "2019-09-01"
    termination_date: "2024-05-31"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	employees, err := LoadDirectory(path)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	assert.Equal(t, "0b9f5c3e-8d7a-4f3c-9a51-6e2d8c1b4a70", employees[0].ID)
	assert.Equal(t, 16, employees[0].HireDate.Day())
	assert.Nil(t, employees[0].TerminationDate)

	assert.Empty(t, employees[1].ID)
	require.NotNil(t, employees[1].TerminationDate)
	assert.Equal(t, 31, employees[1].TerminationDate.Day())
}

func TestLoadDirectory_InvalidDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.yaml")
	content := `
employees:
  - employee_code: EMP-001
    hire_date: 16/03/2024
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadDirectory(path)
	assert.ErrorContains(t, err, "invalid hire_date")
}
