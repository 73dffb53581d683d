package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/99minutos/employee-registry/internal/core/domain"
	"github.com/99minutos/employee-registry/internal/core/ports"
)

// InstrumentedService decorates an EmployeeService with operation counters
// and latency histograms.
type InstrumentedService struct {
	next ports.EmployeeService
}

var _ ports.EmployeeService = (*InstrumentedService)(nil)

func NewInstrumentedService(next ports.EmployeeService) *InstrumentedService {
	return &InstrumentedService{next: next}
}

func (s *InstrumentedService) Create(ctx context.Context, in ports.EmployeeInput) (*domain.Employee, error) {
	defer observe("create", time.Now())
	e, err := s.next.Create(ctx, in)
	record("create", err)
	if err == nil {
		CreatedTotal.Inc()
	}
	return e, err
}

func (s *InstrumentedService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	defer observe("get_by_id", time.Now())
	e, err := s.next.GetByID(ctx, id)
	record("get_by_id", err)
	return e, err
}

func (s *InstrumentedService) GetAll(ctx context.Context) ([]*domain.Employee, error) {
	defer observe("get_all", time.Now())
	list, err := s.next.GetAll(ctx)
	record("get_all", err)
	return list, err
}

func (s *InstrumentedService) Update(ctx context.Context, id int64, in ports.EmployeeInput) (*domain.Employee, error) {
	defer observe("update", time.Now())
	e, err := s.next.Update(ctx, id, in)
	record("update", err)
	return e, err
}

func (s *InstrumentedService) SoftDelete(ctx context.Context, id int64) error {
	defer observe("soft_delete", time.Now())
	err := s.next.SoftDelete(ctx, id)
	record("soft_delete", err)
	return err
}

func (s *InstrumentedService) HardDelete(ctx context.Context, id int64) error {
	defer observe("hard_delete", time.Now())
	err := s.next.HardDelete(ctx, id)
	record("hard_delete", err)
	return err
}

func (s *InstrumentedService) GetByDepartment(ctx context.Context, department string) ([]*domain.Employee, error) {
	defer observe("get_by_department", time.Now())
	list, err := s.next.GetByDepartment(ctx, department)
	record("get_by_department", err)
	return list, err
}

func (s *InstrumentedService) CountByDepartment(ctx context.Context, department string) (int64, error) {
	defer observe("count_by_department", time.Now())
	n, err := s.next.CountByDepartment(ctx, department)
	record("count_by_department", err)
	return n, err
}

func (s *InstrumentedService) GetActive(ctx context.Context) ([]*domain.Employee, error) {
	defer observe("get_active", time.Now())
	list, err := s.next.GetActive(ctx)
	record("get_active", err)
	return list, err
}

func (s *InstrumentedService) SearchByName(ctx context.Context, term string) ([]*domain.Employee, error) {
	defer observe("search_by_name", time.Now())
	list, err := s.next.SearchByName(ctx, term)
	record("search_by_name", err)
	return list, err
}

func (s *InstrumentedService) ToggleStatus(ctx context.Context, id int64) (*domain.Employee, error) {
	defer observe("toggle_status", time.Now())
	e, err := s.next.ToggleStatus(ctx, id)
	record("toggle_status", err)
	return e, err
}

func observe(op string, start time.Time) {
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func record(op string, err error) {
	OperationsTotal.WithLabelValues(op, Result(err)).Inc()
}

// Result maps a service error to its metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrDuplicateEmployee), errors.Is(err, domain.ErrConcurrentModification):
		return ResultConflict
	case errors.Is(err, domain.ErrInvalidEmployee):
		return ResultInvalid
	default:
		return ResultError
	}
}
