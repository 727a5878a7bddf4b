package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/inventar/internal/model"
)

func validateOrganization(code, name string) error {
	if code == "" {
		return model.Invalid("code", "required")
	}
	if len([]rune(code)) > model.OrganizationCodeMaxLen {
		return model.Invalid("code", "must be at most %d characters", model.OrganizationCodeMaxLen)
	}
	if name == "" {
		return model.Invalid("name", "required")
	}
	return nil
}

// CreateOrganization creates a new organization.
func CreateOrganization(ctx context.Context, q Querier, code, name string, active bool) (*model.Organization, error) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if err := validateOrganization(code, name); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO organizations (code, name, active) VALUES (?, ?, ?)`,
		code, name, active,
	)
	if err != nil {
		return nil, writeErr("creating organization", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting organization id: %w", err)
	}

	return GetOrganization(ctx, q, id)
}

// GetOrganization returns an organization by ID.
func GetOrganization(ctx context.Context, q Querier, id int64) (*model.Organization, error) {
	o := &model.Organization{}
	err := q.QueryRowContext(ctx,
		`SELECT id, code, name, active, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&o.ID, &o.Code, &o.Name, &o.Active, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return o, nil
}

// ListOrganizations returns organizations ordered by code.
func ListOrganizations(ctx context.Context, q Querier, activeOnly bool) ([]model.Organization, error) {
	query := `SELECT id, code, name, active, created_at FROM organizations`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY code`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Code, &o.Name, &o.Active, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// UpdateOrganization updates an organization's code, name and active flag.
func UpdateOrganization(ctx context.Context, q Querier, id int64, code, name string, active bool) error {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if err := validateOrganization(code, name); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE organizations SET code = ?, name = ?, active = ? WHERE id = ?`,
		code, name, active, id,
	)
	if err != nil {
		return writeErr("updating organization", err)
	}
	return updated("updating organization", result)
}

// DeleteOrganization deletes an organization. Fails with model.ErrInUse while
// departments, employees, equipment or documents reference it.
func DeleteOrganization(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "deleting organization", `DELETE FROM organizations WHERE id = ?`, id)
}
