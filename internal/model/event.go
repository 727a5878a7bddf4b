package model

import "time"

// Equipment event types.
const (
	EventAssign   = "assign"
	EventMove     = "move"
	EventRepair   = "repair"
	EventStatus   = "status"
	EventWriteOff = "write_off"
	EventNote     = "note"
)

// EquipmentEvent is an immutable audit record of an equipment transition.
// OldStatus and NewStatus are empty when the status did not change.
type EquipmentEvent struct {
	ID             int64     `json:"id"`
	EquipmentID    int64     `json:"equipment_id"`
	EventType      string    `json:"event_type"`
	FromEmployeeID *int64    `json:"from_employee_id,omitempty"`
	ToEmployeeID   *int64    `json:"to_employee_id,omitempty"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	CreatedBy      *int64    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined fields (not always populated).
	EquipmentName    string `json:"equipment_name,omitempty"`
	FromEmployeeName string `json:"from_employee_name,omitempty"`
	ToEmployeeName   string `json:"to_employee_name,omitempty"`
}
