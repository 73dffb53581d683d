package handler

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// employeeRequest is the body of POST and PUT. Validation rules are attached
// at runtime from domain.EmployeeSchema, see NewValidator. A client-supplied
// id is not part of the contract and is dropped by the decoder.
type employeeRequest struct {
	FirstName  string           `json:"firstName"  example:"Ana"`
	LastName   string           `json:"lastName"   example:"Diaz"`
	Email      string           `json:"email"      example:"ana@x.com"`
	Phone      string           `json:"phone"      example:"+52 55 1234 5678"`
	Position   string           `json:"position"   example:"Backend Engineer"`
	Department string           `json:"department" example:"Eng"`
	HireDate   string           `json:"hireDate"   example:"2023-05-02"`
	Salary     *decimal.Decimal `json:"salary"     swaggertype:"number" example:"5500.50"`
	IsActive   *bool            `json:"isActive"`
}

type employeeResponse struct {
	ID         int64       `json:"id"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone,omitempty"`
	Position   string      `json:"position,omitempty"`
	Department string      `json:"department,omitempty"`
	HireDate   string      `json:"hireDate,omitempty"`
	Salary     json.Number `json:"salary,omitempty" swaggertype:"number"`
	IsActive   bool        `json:"isActive"`
	Version    int64       `json:"version"`
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type departmentCountResponse struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}
