package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/inventar/internal/model"
)

// EquipmentFilter narrows ListEquipment. Zero values do not filter.
type EquipmentFilter struct {
	OrganizationID    int64
	EquipmentTypeID   int64
	Status            string
	AssignedTo        int64
	Search            string
	CommissionedFrom  *time.Time
	CommissionedUntil *time.Time
}

var equipmentSelect = sq.Select(
	"e.id", "e.organization_id", "e.equipment_type_id", "e.name",
	"e.inventory_number", "e.pc_number", "e.serial_number", "e.model", "e.specs",
	"e.commissioning_date", "e.status", "e.assigned_to", "e.qr_token",
	"e.cpu", "e.ram_gb", "e.storage", "e.print_format", "e.print_mode",
	"e.created_at", "e.updated_at",
	"o.code", "t.name", "t.category", "emp.full_name",
).
	From("equipment e").
	Join("organizations o ON o.id = e.organization_id").
	Join("equipment_types t ON t.id = e.equipment_type_id").
	LeftJoin("employees emp ON emp.id = e.assigned_to")

func scanEquipment(row rowScanner, e *model.Equipment) error {
	var assignedName sql.NullString
	err := row.Scan(&e.ID, &e.OrganizationID, &e.EquipmentTypeID, &e.Name,
		&e.InventoryNumber, &e.PCNumber, &e.SerialNumber, &e.Model, &e.Specs,
		&e.CommissioningDate, &e.Status, &e.AssignedTo, &e.QRToken,
		&e.CPU, &e.RAMGB, &e.Storage, &e.PrintFormat, &e.PrintMode,
		&e.CreatedAt, &e.UpdatedAt,
		&e.OrganizationCode, &e.TypeName, &e.TypeCategory, &assignedName)
	e.AssignedToName = assignedName.String
	return err
}

// NewQRToken returns a random 32-character hex token.
func NewQRToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating qr token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// validateEquipment checks the fields shared by create and update and applies
// the category rules of the equipment type.
func validateEquipment(ctx context.Context, q Querier, e *model.Equipment) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return model.Invalid("name", "required")
	}

	org, err := GetOrganization(ctx, q, e.OrganizationID)
	if err != nil {
		return err
	}
	if org == nil {
		return model.Invalid("organization_id", "organization not found")
	}

	et, err := GetEquipmentType(ctx, q, e.EquipmentTypeID)
	if err != nil {
		return err
	}
	if et == nil {
		return model.Invalid("equipment_type_id", "equipment type not found")
	}

	if e.AssignedTo != nil {
		if err := checkHolder(ctx, q, *e.AssignedTo, e.OrganizationID, "assigned_to"); err != nil {
			return err
		}
	}

	return e.ApplyCategory(et.Category)
}

// checkHolder verifies that an employee exists and belongs to organizationID.
func checkHolder(ctx context.Context, q Querier, employeeID, organizationID int64, field string) error {
	emp, err := GetEmployee(ctx, q, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return model.Invalid(field, "employee not found")
	}
	if emp.OrganizationID != organizationID {
		return model.Invalid(field, "employee does not belong to the equipment's organization")
	}
	return nil
}

// CheckHolder is the exported form of the holder check used by the engines.
func CheckHolder(ctx context.Context, q Querier, employeeID, organizationID int64) error {
	return checkHolder(ctx, q, employeeID, organizationID, "to_employee_id")
}

// CreateEquipment creates a new equipment item with a fresh QR token. The
// initial status defaults to in_use.
func CreateEquipment(ctx context.Context, q Querier, e *model.Equipment) (*model.Equipment, error) {
	if e.Status == "" {
		e.Status = model.StatusInUse
	}
	if !model.ValidStatus(e.Status) {
		return nil, model.Invalid("status", "unknown status %q", e.Status)
	}
	if err := validateEquipment(ctx, q, e); err != nil {
		return nil, err
	}

	token, err := NewQRToken()
	if err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO equipment (organization_id, equipment_type_id, name, inventory_number, pc_number,
		                        serial_number, model, specs, commissioning_date, status, assigned_to, qr_token,
		                        cpu, ram_gb, storage, print_format, print_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OrganizationID, e.EquipmentTypeID, e.Name, e.InventoryNumber, e.PCNumber,
		e.SerialNumber, e.Model, e.Specs, e.CommissioningDate, e.Status, e.AssignedTo, token,
		e.CPU, e.RAMGB, e.Storage, e.PrintFormat, e.PrintMode,
	)
	if err != nil {
		return nil, writeErr("creating equipment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting equipment id: %w", err)
	}

	return GetEquipment(ctx, q, id)
}

// GetEquipment returns an equipment item by ID.
func GetEquipment(ctx context.Context, q Querier, id int64) (*model.Equipment, error) {
	return getEquipmentWhere(ctx, q, sq.Eq{"e.id": id})
}

// GetEquipmentByQRToken returns the equipment item a scanned label points to.
func GetEquipmentByQRToken(ctx context.Context, q Querier, token string) (*model.Equipment, error) {
	return getEquipmentWhere(ctx, q, sq.Eq{"e.qr_token": token})
}

func getEquipmentWhere(ctx context.Context, q Querier, where sq.Eq) (*model.Equipment, error) {
	query, args, err := equipmentSelect.Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building equipment query: %w", err)
	}

	e := &model.Equipment{}
	err = scanEquipment(q.QueryRowContext(ctx, query, args...), e)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment: %w", err)
	}
	return e, nil
}

// ListEquipment returns equipment matching the filter, ordered by name.
func ListEquipment(ctx context.Context, q Querier, f EquipmentFilter) ([]model.Equipment, error) {
	b := equipmentSelect
	if f.OrganizationID > 0 {
		b = b.Where(sq.Eq{"e.organization_id": f.OrganizationID})
	}
	if f.EquipmentTypeID > 0 {
		b = b.Where(sq.Eq{"e.equipment_type_id": f.EquipmentTypeID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"e.status": f.Status})
	}
	if f.AssignedTo > 0 {
		b = b.Where(sq.Eq{"e.assigned_to": f.AssignedTo})
	}
	if f.CommissionedFrom != nil {
		b = b.Where(sq.GtOrEq{"e.commissioning_date": *f.CommissionedFrom})
	}
	if f.CommissionedUntil != nil {
		b = b.Where(sq.LtOrEq{"e.commissioning_date": *f.CommissionedUntil})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		b = b.Where(sq.Or{
			sq.Like{"e.name": like},
			sq.Like{"e.inventory_number": like},
			sq.Like{"e.pc_number": like},
			sq.Like{"e.serial_number": like},
			sq.Like{"e.model": like},
			sq.Like{"e.specs": like},
		})
	}

	query, args, err := b.OrderBy("e.name", "e.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building equipment query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		var e model.Equipment
		if err := scanEquipment(rows, &e); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// UpdateEquipment updates the descriptive fields of an equipment item. Status,
// holder and QR token are left untouched; status and holder change only
// through the lifecycle engine.
func UpdateEquipment(ctx context.Context, q Querier, e *model.Equipment) error {
	current, err := GetEquipment(ctx, q, e.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("updating equipment: %w", model.ErrNotFound)
	}

	// The holder is validated against the (possibly new) organization.
	e.AssignedTo = current.AssignedTo
	if err := validateEquipment(ctx, q, e); err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE equipment SET organization_id = ?, equipment_type_id = ?, name = ?, inventory_number = ?,
		        pc_number = ?, serial_number = ?, model = ?, specs = ?, commissioning_date = ?,
		        cpu = ?, ram_gb = ?, storage = ?, print_format = ?, print_mode = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.OrganizationID, e.EquipmentTypeID, e.Name, e.InventoryNumber,
		e.PCNumber, e.SerialNumber, e.Model, e.Specs, e.CommissioningDate,
		e.CPU, e.RAMGB, e.Storage, e.PrintFormat, e.PrintMode,
		e.ID,
	)
	if err != nil {
		return writeErr("updating equipment", err)
	}
	return nil
}

// DeleteEquipment deletes an equipment item that has no history and is not
// listed in any document.
func DeleteEquipment(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "deleting equipment", `DELETE FROM equipment WHERE id = ?`, id)
}
