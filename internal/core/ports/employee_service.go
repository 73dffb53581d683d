package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/employee-registry/internal/core/domain"
)

// EmployeeInput carries every mutable employee field. It is the payload of
// both Create and Update; Update replaces all fields with these values.
type EmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Position   string
	Department string
	HireDate   *time.Time
	Salary     *decimal.Decimal
	// IsActive is ignored by Create. On Update a nil value means true.
	IsActive *bool
}

// EmployeeService defines the employee use cases exposed to transports.
type EmployeeService interface {
	Create(ctx context.Context, in EmployeeInput) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetAll(ctx context.Context) ([]*domain.Employee, error)
	Update(ctx context.Context, id int64, in EmployeeInput) (*domain.Employee, error)
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	GetByDepartment(ctx context.Context, department string) ([]*domain.Employee, error)
	CountByDepartment(ctx context.Context, department string) (int64, error)
	GetActive(ctx context.Context) ([]*domain.Employee, error)
	SearchByName(ctx context.Context, term string) ([]*domain.Employee, error)
	ToggleStatus(ctx context.Context, id int64) (*domain.Employee, error)
}

// Serializer runs fn so that calls sharing key never overlap.
type Serializer interface {
	Do(ctx context.Context, key int64, fn func(context.Context) error) error
}
