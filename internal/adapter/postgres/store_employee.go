package postgres

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/domain/employee"
)

const employeeColumns = `id, email, name, password_hash, role, enabled, created_at, updated_at`

func (s *Store) GetEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)

	e, err := scanEmployee(row)
	if err != nil {
		return nil, notFoundWrap(err, "get employee %s", id)
	}
	return &e, nil
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`, email)

	e, err := scanEmployee(row)
	if err != nil {
		return nil, notFoundWrap(err, "get employee by email")
	}
	return &e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO employees (id, email, name, password_hash, role, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Email, e.Name, e.PasswordHash, string(e.Role), e.Enabled, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateEmployeePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE employees SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	return execExpectOne(tag, err, "update employee password %s", id)
}

func scanEmployee(row scannable) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(&e.ID, &e.Email, &e.Name, &e.PasswordHash, &e.Role, &e.Enabled, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
