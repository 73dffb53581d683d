package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/99minutos/employee-registry/internal/core/domain"
)

const (
	uniqueViolationCode = "23505"
	defaultTimeout      = 10 * time.Second
)

// employeeColumns is the select list shared by every read. Salary is read
// as text so it round-trips through decimal.Decimal without float loss.
const employeeColumns = `id, first_name, last_name, email, phone, position, department, hire_date, salary::text, is_active, version`

const (
	insertEmployeeSQL = `INSERT INTO employees (first_name, last_name, email, phone, position, department, hire_date, salary, is_active, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, 1)
RETURNING ` + employeeColumns

	updateEmployeeSQL = `UPDATE employees
   SET first_name = $1, last_name = $2, email = $3, phone = $4, position = $5,
       department = $6, hire_date = $7, salary = $8::numeric, is_active = $9,
       version = version + 1
 WHERE id = $10 AND version = $11
RETURNING ` + employeeColumns

	employeeExistsSQL       = `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`
	selectEmployeeByIDSQL   = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	selectEmployeeByMailSQL = `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	selectEmployeesSQL      = `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`
	selectByDepartmentSQL   = `SELECT ` + employeeColumns + ` FROM employees WHERE department = $1 ORDER BY id`
	selectByActiveSQL       = `SELECT ` + employeeColumns + ` FROM employees WHERE is_active = $1 ORDER BY id`
	searchByNameSQL         = `SELECT ` + employeeColumns + ` FROM employees WHERE first_name ILIKE $1 OR last_name ILIKE $1 ORDER BY id`
	countByDepartmentSQL    = `SELECT COUNT(*) FROM employees WHERE department = $1`
	deleteEmployeeSQL       = `DELETE FROM employees WHERE id = $1`
)

// EmployeeRepository implements ports.EmployeeRepository on PostgreSQL.
// Every call is bounded by timeout.
type EmployeeRepository struct {
	pool    Queryer
	timeout time.Duration
}

func NewEmployeeRepository(pool Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool, timeout: defaultTimeout}
}

// Save inserts e when it has no id, otherwise updates the row guarded by its
// version.
func (r *EmployeeRepository) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if e.ID == 0 {
		row := r.pool.QueryRow(ctx, insertEmployeeSQL, r.args(e)...)
		saved, err := scanEmployee(row)
		if err != nil {
			return nil, translatePgError(err, e)
		}
		return saved, nil
	}

	args := append(r.args(e), e.ID, e.Version)
	saved, err := scanEmployee(r.pool.QueryRow(ctx, updateEmployeeSQL, args...))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, translatePgError(err, e)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, employeeExistsSQL, e.ID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check employee %d: %w", e.ID, err)
	}
	if exists {
		return nil, domain.ErrConcurrentModification
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r *EmployeeRepository) args(e *domain.Employee) []any {
	return []any{
		e.FirstName,
		e.LastName,
		e.Email,
		nullableString(e.Phone),
		nullableString(e.Position),
		nullableString(e.Department),
		nullableDate(e.HireDate),
		nullableDecimal(e.Salary),
		e.IsActive,
	}
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	e, err := scanEmployee(r.pool.QueryRow(ctx, selectEmployeeByIDSQL, id))
	if err != nil && !errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, fmt.Errorf("find employee %d: %w", id, err)
	}
	return e, err
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	e, err := scanEmployee(r.pool.QueryRow(ctx, selectEmployeeByMailSQL, email))
	if err != nil && !errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, fmt.Errorf("find employee by email: %w", err)
	}
	return e, err
}

func (r *EmployeeRepository) FindAll(ctx context.Context) ([]*domain.Employee, error) {
	return r.list(ctx, selectEmployeesSQL)
}

func (r *EmployeeRepository) FindByDepartment(ctx context.Context, department string) ([]*domain.Employee, error) {
	return r.list(ctx, selectByDepartmentSQL, department)
}

func (r *EmployeeRepository) FindByActive(ctx context.Context, active bool) ([]*domain.Employee, error) {
	return r.list(ctx, selectByActiveSQL, active)
}

// SearchByName matches term as a literal, case-insensitive substring of the
// first or last name. LIKE wildcards in term are escaped.
func (r *EmployeeRepository) SearchByName(ctx context.Context, term string) ([]*domain.Employee, error) {
	return r.list(ctx, searchByNameSQL, "%"+escapeLike(term)+"%")
}

func (r *EmployeeRepository) CountByDepartment(ctx context.Context, department string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, countByDepartmentSQL, department).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees by department: %w", err)
	}
	return n, nil
}

func (r *EmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, deleteEmployeeSQL, id)
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.pool.Ping(ctx)
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e          domain.Employee
		phone      sql.NullString
		position   sql.NullString
		department sql.NullString
		hireDate   sql.NullTime
		salary     sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&phone,
		&position,
		&department,
		&hireDate,
		&salary,
		&e.IsActive,
		&e.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Phone = phone.String
	e.Position = position.String
	e.Department = department.String
	if hireDate.Valid {
		e.HireDate = domain.NormalizeDate(&hireDate.Time)
	}
	if salary.Valid {
		s, err := decimal.NewFromString(salary.String)
		if err != nil {
			return nil, fmt.Errorf("decode salary: %w", err)
		}
		e.Salary = &s
	}
	return &e, nil
}

func translatePgError(err error, e *domain.Employee) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &domain.UniqueViolationError{Field: domain.FieldEmail.JSON, Value: e.Email}
	}
	return fmt.Errorf("save employee: %w", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableDate(t *time.Time) any {
	if d := domain.NormalizeDate(t); d != nil {
		return *d
	}
	return nil
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.StringFixed(domain.SalaryScale)
}
