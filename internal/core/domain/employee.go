package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for HireDate on the wire.
const DateLayout = "2006-01-02"

// Employee is the sole aggregate managed by the registry.
type Employee struct {
	ID         int64            `json:"id"`
	FirstName  string           `json:"firstName"`
	LastName   string           `json:"lastName"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone,omitempty"`
	Position   string           `json:"position,omitempty"`
	Department string           `json:"department,omitempty"`
	HireDate   *time.Time       `json:"hireDate,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty"`
	IsActive   bool             `json:"isActive"`
	// Version is bumped by the store on every successful write.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers never share pointer fields.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	if e.HireDate != nil {
		d := *e.HireDate
		c.HireDate = &d
	}
	if e.Salary != nil {
		s := *e.Salary
		c.Salary = &s
	}
	return &c
}

// MarshalBinary lets the Redis client store an Employee directly.
func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// NormalizeDate truncates t to a UTC calendar date.
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &out
}

// NormalizeSalary rounds to the stored scale of two fractional digits.
func NormalizeSalary(s *decimal.Decimal) *decimal.Decimal {
	if s == nil {
		return nil
	}
	out := s.Round(SalaryScale)
	return &out
}
