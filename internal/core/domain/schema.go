package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// SalaryScale is the number of fractional digits kept for salaries.
	SalaryScale = 2
	// SalaryIntegerDigits bounds the integer part of a salary.
	SalaryIntegerDigits = 10
)

// FieldSpec describes one persisted employee attribute. Stores take column
// and document key names from it and the HTTP layer derives its validation
// rules from it.
type FieldSpec struct {
	Name     string // Go field name on Employee and on request structs
	JSON     string
	Column   string
	Required bool
	MaxLen   int // 0 = unbounded or not a text field

	text func(*Employee) string
}

// Rules renders the field constraints as a go-playground/validator tag.
func (f FieldSpec) Rules() string {
	var parts []string
	if f.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "omitempty")
	}
	if f.MaxLen > 0 {
		parts = append(parts, fmt.Sprintf("max=%d", f.MaxLen))
	}
	return strings.Join(parts, ",")
}

var (
	FieldID         = FieldSpec{Name: "ID", JSON: "id", Column: "id"}
	FieldFirstName  = FieldSpec{Name: "FirstName", JSON: "firstName", Column: "first_name", Required: true, MaxLen: 100, text: func(e *Employee) string { return e.FirstName }}
	FieldLastName   = FieldSpec{Name: "LastName", JSON: "lastName", Column: "last_name", Required: true, MaxLen: 100, text: func(e *Employee) string { return e.LastName }}
	FieldEmail      = FieldSpec{Name: "Email", JSON: "email", Column: "email", Required: true, MaxLen: 150, text: func(e *Employee) string { return e.Email }}
	FieldPhone      = FieldSpec{Name: "Phone", JSON: "phone", Column: "phone", MaxLen: 20, text: func(e *Employee) string { return e.Phone }}
	FieldPosition   = FieldSpec{Name: "Position", JSON: "position", Column: "position", MaxLen: 100, text: func(e *Employee) string { return e.Position }}
	FieldDepartment = FieldSpec{Name: "Department", JSON: "department", Column: "department", MaxLen: 50, text: func(e *Employee) string { return e.Department }}
	FieldHireDate   = FieldSpec{Name: "HireDate", JSON: "hireDate", Column: "hire_date"}
	FieldSalary     = FieldSpec{Name: "Salary", JSON: "salary", Column: "salary"}
	FieldIsActive   = FieldSpec{Name: "IsActive", JSON: "isActive", Column: "is_active"}
	FieldVersion    = FieldSpec{Name: "Version", JSON: "version", Column: "version"}
)

// EmployeeSchema lists the mutable employee attributes in declaration order.
var EmployeeSchema = []FieldSpec{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldPosition,
	FieldDepartment,
	FieldHireDate,
	FieldSalary,
	FieldIsActive,
}

// ValidationRules maps Go field names to validator tags for every text
// field in the schema.
func ValidationRules() map[string]string {
	rules := make(map[string]string)
	for _, f := range EmployeeSchema {
		if f.text == nil {
			continue
		}
		rules[f.Name] = f.Rules()
	}
	return rules
}

// Validate checks e against EmployeeSchema and the salary precision.
func Validate(e *Employee) error {
	for _, f := range EmployeeSchema {
		if f.text == nil {
			continue
		}
		v := f.text(e)
		if f.Required && strings.TrimSpace(v) == "" {
			return &ValidationError{Field: f.JSON, Reason: "is required"}
		}
		if f.MaxLen > 0 && utf8.RuneCountInString(v) > f.MaxLen {
			return &ValidationError{Field: f.JSON, Reason: fmt.Sprintf("must be at most %d characters", f.MaxLen)}
		}
	}
	if e.Salary != nil && !salaryFits(*e.Salary) {
		return &ValidationError{Field: FieldSalary.JSON, Reason: fmt.Sprintf("must have at most %d integer digits", SalaryIntegerDigits)}
	}
	return nil
}

var salaryLimit = decimal.New(1, SalaryIntegerDigits)

func salaryFits(s decimal.Decimal) bool {
	return s.Round(SalaryScale).Abs().LessThan(salaryLimit)
}
