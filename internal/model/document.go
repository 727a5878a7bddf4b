package model

import "time"

// Document types.
const (
	DocumentTransfer = "transfer"
	DocumentWriteOff = "write_off"
)

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	return t == DocumentTransfer || t == DocumentWriteOff
}

// InventoryDocument is a formal act that changes a batch of equipment at once.
// AppliedAt is nil until the document has taken effect.
type InventoryDocument struct {
	ID             int64      `json:"id"`
	DocType        string     `json:"doc_type"`
	OrganizationID int64      `json:"organization_id"`
	Number         string     `json:"number"`
	Date           time.Time  `json:"date"`
	FromEmployeeID *int64     `json:"from_employee_id,omitempty"`
	ToEmployeeID   *int64     `json:"to_employee_id,omitempty"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Lines []InventoryDocumentLine `json:"lines,omitempty"`

	// Joined fields (not always populated).
	OrganizationName string `json:"organization_name,omitempty"`
	FromEmployeeName string `json:"from_employee_name,omitempty"`
	ToEmployeeName   string `json:"to_employee_name,omitempty"`
}

// Applied reports whether the document has already taken effect.
func (d *InventoryDocument) Applied() bool {
	return d.AppliedAt != nil
}

// InventoryDocumentLine is one equipment item within a document. The snapshot
// fields are frozen copies of the equipment taken when the line was created.
type InventoryDocumentLine struct {
	ID                      int64  `json:"id"`
	DocumentID              int64  `json:"document_id"`
	EquipmentID             int64  `json:"equipment_id"`
	NameSnapshot            string `json:"name_snapshot"`
	TypeSnapshot            string `json:"type_snapshot,omitempty"`
	InventoryNumberSnapshot string `json:"inventory_number_snapshot,omitempty"`
	PCNumberSnapshot        string `json:"pc_number_snapshot,omitempty"`
}

// NewDocumentLine builds a line for document with a snapshot of eq's current
// identifying fields. eq.TypeName must be populated.
func NewDocumentLine(documentID int64, eq *Equipment) InventoryDocumentLine {
	return InventoryDocumentLine{
		DocumentID:              documentID,
		EquipmentID:             eq.ID,
		NameSnapshot:            eq.Name,
		TypeSnapshot:            eq.TypeName,
		InventoryNumberSnapshot: eq.InventoryNumber,
		PCNumberSnapshot:        eq.PCNumber,
	}
}
