package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/inventar/internal/model"
)

func validateEquipmentType(name, category string) error {
	if name == "" {
		return model.Invalid("name", "required")
	}
	if !model.ValidCategory(category) {
		return model.Invalid("category", "unknown category %q", category)
	}
	return nil
}

// CreateEquipmentType creates a new equipment type.
func CreateEquipmentType(ctx context.Context, q Querier, name, category string) (*model.EquipmentType, error) {
	name = strings.TrimSpace(name)
	if err := validateEquipmentType(name, category); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO equipment_types (name, category) VALUES (?, ?)`,
		name, category,
	)
	if err != nil {
		return nil, writeErr("creating equipment type", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting equipment type id: %w", err)
	}

	return GetEquipmentType(ctx, q, id)
}

// GetEquipmentType returns an equipment type by ID.
func GetEquipmentType(ctx context.Context, q Querier, id int64) (*model.EquipmentType, error) {
	et := &model.EquipmentType{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, category FROM equipment_types WHERE id = ?`, id,
	).Scan(&et.ID, &et.Name, &et.Category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment type: %w", err)
	}
	return et, nil
}

// ListEquipmentTypes returns all equipment types ordered by name.
func ListEquipmentTypes(ctx context.Context, q Querier) ([]model.EquipmentType, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, category FROM equipment_types ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment types: %w", err)
	}
	defer rows.Close()

	var types []model.EquipmentType
	for rows.Next() {
		var et model.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name, &et.Category); err != nil {
			return nil, fmt.Errorf("scanning equipment type: %w", err)
		}
		types = append(types, et)
	}
	return types, rows.Err()
}

// UpdateEquipmentType renames an equipment type or changes its category.
// The category is frozen once equipment of the type exists, since existing
// attribute groups were validated against it.
func UpdateEquipmentType(ctx context.Context, q Querier, id int64, name, category string) error {
	name = strings.TrimSpace(name)
	if err := validateEquipmentType(name, category); err != nil {
		return err
	}

	current, err := GetEquipmentType(ctx, q, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("updating equipment type: %w", model.ErrNotFound)
	}

	if current.Category != category {
		var count int
		err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM equipment WHERE equipment_type_id = ?`, id,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking equipment of type: %w", err)
		}
		if count > 0 {
			return model.Invalid("category", "cannot change category while %d equipment items use this type", count)
		}
	}

	_, err = q.ExecContext(ctx,
		`UPDATE equipment_types SET name = ?, category = ? WHERE id = ?`,
		name, category, id,
	)
	if err != nil {
		return writeErr("updating equipment type", err)
	}
	return nil
}

// DeleteEquipmentType deletes an equipment type no equipment refers to.
func DeleteEquipmentType(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "deleting equipment type", `DELETE FROM equipment_types WHERE id = ?`, id)
}
