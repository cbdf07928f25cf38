package config

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/spf13/viper"
)

// DirectoryEntry is one employee of the directory file loaded in memory mode.
type DirectoryEntry struct {
	ID              string `mapstructure:"id"`
	EmployeeCode    string `mapstructure:"employee_code"`
	FullName        string `mapstructure:"full_name"`
	HireDate        string `mapstructure:"hire_date"`
	TerminationDate string `mapstructure:"termination_date"`
}

func (e DirectoryEntry) Employee() (employee.Employee, error) {
	hired, err := time.Parse(time.DateOnly, e.HireDate)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("employee %s: invalid hire_date: %w", e.EmployeeCode, err)
	}

	emp := employee.Employee{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		HireDate:     hired,
	}
	if e.TerminationDate != "" {
		terminated, err := time.Parse(time.DateOnly, e.TerminationDate)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("employee %s: invalid termination_date: %w", e.EmployeeCode, err)
		}
		emp.TerminationDate = &terminated
	}
	return emp, nil
}

// LoadDirectory reads the "employees" list of the file at path.
func LoadDirectory(path string) ([]employee.Employee, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}

	var file struct {
		Employees []DirectoryEntry `mapstructure:"employees"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("unmarshal directory: %w", err)
	}

	out := make([]employee.Employee, 0, len(file.Employees))
	for _, entry := range file.Employees {
		if entry.EmployeeCode == "" {
			return nil, fmt.Errorf("directory entry without employee_code")
		}
		emp, err := entry.Employee()
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, nil
}
