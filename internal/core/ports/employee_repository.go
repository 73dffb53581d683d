package ports

import (
	"context"

	"github.com/99minutos/employee-registry/internal/core/domain"
)

// EmployeeRepository is the durable record store for employees. It assigns
// ids and is the only enforcer of email uniqueness.
type EmployeeRepository interface {
	// Save inserts e when e.ID is zero, otherwise replaces the stored record
	// whose id and version match. It returns the persisted record with the
	// assigned id and the new version.
	//
	// Errors: *domain.UniqueViolationError on an email collision,
	// domain.ErrConcurrentModification on a version mismatch and
	// domain.ErrEmployeeNotFound when the id no longer exists.
	Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error)

	// FindByID returns domain.ErrEmployeeNotFound when no record has id.
	FindByID(ctx context.Context, id int64) (*domain.Employee, error)
	// FindByEmail returns domain.ErrEmployeeNotFound when no record has email.
	FindByEmail(ctx context.Context, email string) (*domain.Employee, error)
	FindAll(ctx context.Context) ([]*domain.Employee, error)
	FindByDepartment(ctx context.Context, department string) ([]*domain.Employee, error)
	FindByActive(ctx context.Context, active bool) ([]*domain.Employee, error)
	// SearchByName matches term case-insensitively as a substring of the
	// first or the last name.
	SearchByName(ctx context.Context, term string) ([]*domain.Employee, error)
	CountByDepartment(ctx context.Context, department string) (int64, error)
	DeleteByID(ctx context.Context, id int64) error

	// Ping reports whether the underlying medium is reachable.
	Ping(ctx context.Context) error
}
