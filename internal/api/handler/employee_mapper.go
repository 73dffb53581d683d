package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/99minutos/employee-registry/internal/core/domain"
	"github.com/99minutos/employee-registry/internal/core/ports"
)

func toEmployeeInput(req employeeRequest) (ports.EmployeeInput, error) {
	in := ports.EmployeeInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
		Salary:     req.Salary,
		IsActive:   req.IsActive,
	}

	if s := strings.TrimSpace(req.HireDate); s != "" {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return ports.EmployeeInput{}, fmt.Errorf("hireDate must use the %s format", domain.DateLayout)
		}
		in.HireDate = &d
	}
	return in, nil
}

func toEmployeeResponse(e *domain.Employee) employeeResponse {
	resp := employeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Position:   e.Position,
		Department: e.Department,
		IsActive:   e.IsActive,
		Version:    e.Version,
	}
	if e.HireDate != nil {
		resp.HireDate = e.HireDate.Format(domain.DateLayout)
	}
	if e.Salary != nil {
		resp.Salary = json.Number(e.Salary.StringFixed(domain.SalaryScale))
	}
	return resp
}

func toEmployeeResponses(list []*domain.Employee) []employeeResponse {
	out := make([]employeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResponse(e))
	}
	return out
}
