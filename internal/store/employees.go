package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/inventar/internal/model"
)

// EmployeeFilter narrows ListEmployees. Zero values do not filter.
type EmployeeFilter struct {
	OrganizationID int64
	DepartmentID   int64
	Active         *bool
	Search         string
}

var employeeSelect = sq.Select(
	"emp.id", "emp.organization_id", "emp.department_id", "emp.full_name",
	"emp.email", "emp.phone", "emp.active", "o.code", "d.name",
).
	From("employees emp").
	Join("organizations o ON o.id = emp.organization_id").
	Join("departments d ON d.id = emp.department_id")

func scanEmployee(row rowScanner, e *model.Employee) error {
	return row.Scan(&e.ID, &e.OrganizationID, &e.DepartmentID, &e.FullName,
		&e.Email, &e.Phone, &e.Active, &e.OrganizationCode, &e.DepartmentName)
}

// validateEmployee enforces that the department belongs to the employee's organization.
func validateEmployee(ctx context.Context, q Querier, e *model.Employee) error {
	e.FullName = strings.TrimSpace(e.FullName)
	if e.FullName == "" {
		return model.Invalid("full_name", "required")
	}

	org, err := GetOrganization(ctx, q, e.OrganizationID)
	if err != nil {
		return err
	}
	if org == nil {
		return model.Invalid("organization_id", "organization not found")
	}

	dept, err := GetDepartment(ctx, q, e.DepartmentID)
	if err != nil {
		return err
	}
	if dept == nil {
		return model.Invalid("department_id", "department not found")
	}
	if dept.OrganizationID != e.OrganizationID {
		return model.Invalid("department_id", "department does not belong to the employee's organization")
	}
	return nil
}

// CreateEmployee creates a new employee.
func CreateEmployee(ctx context.Context, q Querier, e *model.Employee) (*model.Employee, error) {
	if err := validateEmployee(ctx, q, e); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO employees (organization_id, department_id, full_name, email, phone, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.OrganizationID, e.DepartmentID, e.FullName, e.Email, e.Phone, e.Active,
	)
	if err != nil {
		return nil, writeErr("creating employee", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting employee id: %w", err)
	}

	return GetEmployee(ctx, q, id)
}

// GetEmployee returns an employee by ID.
func GetEmployee(ctx context.Context, q Querier, id int64) (*model.Employee, error) {
	query, args, err := employeeSelect.Where(sq.Eq{"emp.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building employee query: %w", err)
	}

	e := &model.Employee{}
	err = scanEmployee(q.QueryRowContext(ctx, query, args...), e)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns employees matching the filter, ordered by
// organization, department and name.
func ListEmployees(ctx context.Context, q Querier, f EmployeeFilter) ([]model.Employee, error) {
	b := employeeSelect
	if f.OrganizationID > 0 {
		b = b.Where(sq.Eq{"emp.organization_id": f.OrganizationID})
	}
	if f.DepartmentID > 0 {
		b = b.Where(sq.Eq{"emp.department_id": f.DepartmentID})
	}
	if f.Active != nil {
		b = b.Where(sq.Eq{"emp.active": *f.Active})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		b = b.Where(sq.Or{
			sq.Like{"emp.full_name": like},
			sq.Like{"emp.email": like},
			sq.Like{"emp.phone": like},
		})
	}

	query, args, err := b.OrderBy("o.code", "d.name", "emp.full_name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building employee query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateEmployee updates an employee. Moving an employee to another
// organization is refused while they still hold equipment of the old one.
func UpdateEmployee(ctx context.Context, q Querier, e *model.Employee) error {
	if err := validateEmployee(ctx, q, e); err != nil {
		return err
	}

	var held int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment WHERE assigned_to = ? AND organization_id <> ?`,
		e.ID, e.OrganizationID,
	).Scan(&held)
	if err != nil {
		return fmt.Errorf("checking held equipment: %w", err)
	}
	if held > 0 {
		return model.Invalid("organization_id", "employee still holds %d equipment items of another organization", held)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE employees SET organization_id = ?, department_id = ?, full_name = ?, email = ?, phone = ?, active = ?
		 WHERE id = ?`,
		e.OrganizationID, e.DepartmentID, e.FullName, e.Email, e.Phone, e.Active, e.ID,
	)
	if err != nil {
		return writeErr("updating employee", err)
	}
	return updated("updating employee", result)
}

// DeleteEmployee deletes an employee that holds no equipment and appears in
// no event or document.
func DeleteEmployee(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "deleting employee", `DELETE FROM employees WHERE id = ?`, id)
}
