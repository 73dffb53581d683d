package ports

import (
	"context"

	"github.com/99minutos/employee-registry/internal/core/domain"
)

// EmployeeCache is a read-through cache of employees keyed by id.
// A miss is reported as (nil, nil). After Invalidate, a Set for the same id
// may be dropped for a short while so fills racing a mutation cannot
// restore the old record.
type EmployeeCache interface {
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Set(ctx context.Context, e *domain.Employee) error
	Invalidate(ctx context.Context, id int64) error
}
