package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/employee-registry/internal/core/domain"
	"github.com/99minutos/employee-registry/internal/core/ports"
)

// inlineSerializer runs work on the calling goroutine. It is used when no
// serializer is configured.
type inlineSerializer struct{}

func (inlineSerializer) Do(ctx context.Context, _ int64, fn func(context.Context) error) error {
	return fn(ctx)
}

// EmployeeService implements ports.EmployeeService on top of a record store.
type EmployeeService struct {
	repo   ports.EmployeeRepository
	cache  ports.EmployeeCache
	serial ports.Serializer
	logger zerolog.Logger
}

// NewEmployeeService wires the service. cache and serializer are optional.
func NewEmployeeService(
	repo ports.EmployeeRepository,
	cache ports.EmployeeCache,
	serializer ports.Serializer,
	logger zerolog.Logger,
) *EmployeeService {
	if serializer == nil {
		serializer = inlineSerializer{}
	}
	return &EmployeeService{repo: repo, cache: cache, serial: serializer, logger: logger}
}

// Create persists a new, active employee. The store assigns the id.
func (s *EmployeeService) Create(ctx context.Context, in ports.EmployeeInput) (*domain.Employee, error) {
	e := &domain.Employee{}
	applyInput(e, in)
	e.IsActive = true

	if err := domain.Validate(e); err != nil {
		return nil, err
	}

	created, err := s.repo.Save(ctx, e)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", in.Email).Msg("failed to create employee")
		return nil, err
	}

	s.logger.Info().Int64("employee_id", created.ID).Str("department", created.Department).Msg("employee created")
	return created, nil
}

// GetByID returns the employee with id, active or not.
//
// A cache miss is filled on the id's serializer so the fill cannot land
// after a mutation's invalidation.
func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	if s.cache == nil {
		return s.resolve(ctx, id)
	}

	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("employee_id", id).Msg("cache lookup failed, reading store")
	} else if cached != nil {
		return cached, nil
	}

	var e *domain.Employee
	err = s.serial.Do(ctx, id, func(ctx context.Context) error {
		var err error
		if e, err = s.resolve(ctx, id); err != nil {
			return err
		}
		if err := s.cache.Set(ctx, e); err != nil {
			s.logger.Warn().Err(err).Int64("employee_id", id).Msg("failed to cache employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) GetAll(ctx context.Context) ([]*domain.Employee, error) {
	return s.repo.FindAll(ctx)
}

// Update replaces every mutable field of the employee with the values in in.
// Fields absent from in are cleared; there is no partial patch.
func (s *EmployeeService) Update(ctx context.Context, id int64, in ports.EmployeeInput) (*domain.Employee, error) {
	var updated *domain.Employee
	err := s.serial.Do(ctx, id, func(ctx context.Context) error {
		existing, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}

		applyInput(existing, in)
		existing.IsActive = in.IsActive == nil || *in.IsActive

		if err := domain.Validate(existing); err != nil {
			return err
		}

		updated, err = s.save(ctx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee updated")
	return updated, nil
}

// SoftDelete marks the employee inactive. Deactivating an inactive employee
// is a no-op.
func (s *EmployeeService) SoftDelete(ctx context.Context, id int64) error {
	return s.serial.Do(ctx, id, func(ctx context.Context) error {
		existing, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}
		if !existing.IsActive {
			s.logger.Debug().Int64("employee_id", id).Msg("employee already inactive")
			return nil
		}

		existing.IsActive = false
		if _, err := s.save(ctx, existing); err != nil {
			return err
		}

		s.logger.Info().Int64("employee_id", id).Msg("employee deactivated")
		return nil
	})
}

// HardDelete permanently removes the employee.
func (s *EmployeeService) HardDelete(ctx context.Context, id int64) error {
	return s.serial.Do(ctx, id, func(ctx context.Context) error {
		if _, err := s.resolve(ctx, id); err != nil {
			return err
		}

		if err := s.repo.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrEmployeeNotFound) {
				return domain.NotFound(id)
			}
			return err
		}
		s.invalidate(ctx, id)

		s.logger.Info().Int64("employee_id", id).Msg("employee deleted permanently")
		return nil
	})
}

func (s *EmployeeService) GetByDepartment(ctx context.Context, department string) ([]*domain.Employee, error) {
	return s.repo.FindByDepartment(ctx, department)
}

func (s *EmployeeService) CountByDepartment(ctx context.Context, department string) (int64, error) {
	return s.repo.CountByDepartment(ctx, department)
}

// GetActive lists only active employees.
func (s *EmployeeService) GetActive(ctx context.Context) ([]*domain.Employee, error) {
	return s.repo.FindByActive(ctx, true)
}

// SearchByName returns employees whose first or last name contains term.
// A blank term matches nothing.
func (s *EmployeeService) SearchByName(ctx context.Context, term string) ([]*domain.Employee, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Employee{}, nil
	}
	return s.repo.SearchByName(ctx, term)
}

// ToggleStatus flips the active flag and returns the stored result.
func (s *EmployeeService) ToggleStatus(ctx context.Context, id int64) (*domain.Employee, error) {
	var toggled *domain.Employee
	err := s.serial.Do(ctx, id, func(ctx context.Context) error {
		existing, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}

		existing.IsActive = !existing.IsActive
		toggled, err = s.save(ctx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("employee_id", id).Bool("is_active", toggled.IsActive).Msg("employee status toggled")
	return toggled, nil
}

// resolve reads id from the store, bypassing the cache, and converts a miss
// into a NotFoundError.
func (s *EmployeeService) resolve(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.NotFound(id)
		}
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	saved, err := s.repo.Save(ctx, e)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.NotFound(e.ID)
		}
		return nil, err
	}
	s.invalidate(ctx, e.ID)
	return saved, nil
}

func (s *EmployeeService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("employee_id", id).Msg("failed to invalidate cached employee")
	}
}

// applyInput copies every mutable field except IsActive from in to e.
func applyInput(e *domain.Employee, in ports.EmployeeInput) {
	e.FirstName = strings.TrimSpace(in.FirstName)
	e.LastName = strings.TrimSpace(in.LastName)
	e.Email = strings.TrimSpace(in.Email)
	e.Phone = strings.TrimSpace(in.Phone)
	e.Position = strings.TrimSpace(in.Position)
	e.Department = strings.TrimSpace(in.Department)
	e.HireDate = domain.NormalizeDate(in.HireDate)
	e.Salary = domain.NormalizeSalary(in.Salary)
}
