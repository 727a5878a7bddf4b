package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/inventar/internal/model"
)

// CreateDepartment creates a department within an organization.
func CreateDepartment(ctx context.Context, q Querier, organizationID int64, name string, active bool) (*model.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Invalid("name", "required")
	}

	org, err := GetOrganization(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, model.Invalid("organization_id", "organization not found")
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO departments (organization_id, name, active) VALUES (?, ?, ?)`,
		organizationID, name, active,
	)
	if err != nil {
		return nil, writeErr("creating department", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting department id: %w", err)
	}

	return GetDepartment(ctx, q, id)
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, q Querier, id int64) (*model.Department, error) {
	d := &model.Department{}
	err := q.QueryRowContext(ctx,
		`SELECT id, organization_id, name, active FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return d, nil
}

// ListDepartments returns the departments of an organization.
func ListDepartments(ctx context.Context, q Querier, organizationID int64) ([]model.Department, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, organization_id, name, active
		 FROM departments WHERE organization_id = ? ORDER BY name`, organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Active); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// UpdateDepartment renames a department and sets its active flag.
func UpdateDepartment(ctx context.Context, q Querier, id int64, name string, active bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Invalid("name", "required")
	}

	result, err := q.ExecContext(ctx,
		`UPDATE departments SET name = ?, active = ? WHERE id = ?`,
		name, active, id,
	)
	if err != nil {
		return writeErr("updating department", err)
	}
	return updated("updating department", result)
}

// DeleteDepartment deletes a department that has no employees.
func DeleteDepartment(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "deleting department", `DELETE FROM departments WHERE id = ?`, id)
}
