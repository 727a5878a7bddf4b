package model

import (
	"strings"
	"time"
)

// Equipment statuses.
const (
	StatusReserve    = "reserve"
	StatusRepair     = "repair"
	StatusInUse      = "in_use"
	StatusToTransfer = "to_transfer"
	StatusToWriteOff = "to_write_off"
	StatusWrittenOff = "written_off"
)

// Statuses lists every equipment status in display order.
var Statuses = []string{
	StatusReserve,
	StatusRepair,
	StatusInUse,
	StatusToTransfer,
	StatusToWriteOff,
	StatusWrittenOff,
}

// ValidStatus reports whether s is a known equipment status.
func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransition reports whether equipment may move from one status to
// another. Every known status may follow every other one, written_off
// included.
func AllowedTransition(from, to string) bool {
	return ValidStatus(from) && ValidStatus(to)
}

// Equipment type categories. The category decides which attribute group of
// Equipment is required and which is cleared.
const (
	CategoryComputer = "computer"
	CategoryPrint    = "print"
	CategoryOther    = "other"
)

// ValidCategory reports whether c is a known equipment type category.
func ValidCategory(c string) bool {
	return c == CategoryComputer || c == CategoryPrint || c == CategoryOther
}

// Print formats and modes for print-category equipment.
const (
	PrintFormatA4 = "A4"
	PrintFormatA3 = "A3"

	PrintModeMono  = "mono"
	PrintModeColor = "color"
)

// EquipmentType classifies equipment, e.g. "PC", "Printer", "Monitor".
type EquipmentType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Equipment is a single tracked asset.
type Equipment struct {
	ID                int64      `json:"id"`
	OrganizationID    int64      `json:"organization_id"`
	EquipmentTypeID   int64      `json:"equipment_type_id"`
	Name              string     `json:"name"`
	InventoryNumber   string     `json:"inventory_number,omitempty"`
	PCNumber          string     `json:"pc_number,omitempty"`
	SerialNumber      string     `json:"serial_number,omitempty"`
	Model             string     `json:"model,omitempty"`
	Specs             string     `json:"specs,omitempty"`
	CommissioningDate *time.Time `json:"commissioning_date,omitempty"`
	Status            string     `json:"status"`
	AssignedTo        *int64     `json:"assigned_to,omitempty"`
	QRToken           string     `json:"qr_token"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Computer attributes.
	CPU     string `json:"cpu,omitempty"`
	RAMGB   int    `json:"ram_gb,omitempty"`
	Storage string `json:"storage,omitempty"`

	// Printer attributes.
	PrintFormat string `json:"print_format,omitempty"`
	PrintMode   string `json:"print_mode,omitempty"`

	// Joined fields (not always populated).
	OrganizationCode string `json:"organization_code,omitempty"`
	TypeName         string `json:"type_name,omitempty"`
	TypeCategory     string `json:"type_category,omitempty"`
	AssignedToName   string `json:"assigned_to_name,omitempty"`
}

// ApplyCategory validates the attribute group required by category and
// clears the groups that do not belong to it.
func (e *Equipment) ApplyCategory(category string) error {
	e.CPU = strings.TrimSpace(e.CPU)
	e.Storage = strings.TrimSpace(e.Storage)
	e.PrintFormat = strings.TrimSpace(e.PrintFormat)
	e.PrintMode = strings.TrimSpace(e.PrintMode)

	switch category {
	case CategoryComputer:
		if e.CPU == "" {
			return Invalid("cpu", "required for computer equipment")
		}
		if e.RAMGB <= 0 {
			return Invalid("ram_gb", "must be positive for computer equipment")
		}
		if e.Storage == "" {
			return Invalid("storage", "required for computer equipment")
		}
		e.clearPrint()
	case CategoryPrint:
		if e.PrintFormat != PrintFormatA4 && e.PrintFormat != PrintFormatA3 {
			return Invalid("print_format", "must be %s or %s", PrintFormatA4, PrintFormatA3)
		}
		if e.PrintMode != PrintModeMono && e.PrintMode != PrintModeColor {
			return Invalid("print_mode", "must be %s or %s", PrintModeMono, PrintModeColor)
		}
		e.clearComputer()
	case CategoryOther:
		e.clearComputer()
		e.clearPrint()
	default:
		return Invalid("category", "unknown category %q", category)
	}
	return nil
}

func (e *Equipment) clearComputer() {
	e.CPU = ""
	e.RAMGB = 0
	e.Storage = ""
}

func (e *Equipment) clearPrint() {
	e.PrintFormat = ""
	e.PrintMode = ""
}
