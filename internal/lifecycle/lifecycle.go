// Package lifecycle owns every change to an equipment item's status and
// holder. Each change is built as a transition and committed together with
// its audit event in one transaction.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/inventar/internal/model"
)

// transition is the new state of one equipment item and the event that
// records it.
type transition struct {
	equipmentID int64
	status      string
	assignedTo  *int64
	event       model.EquipmentEvent
}

// now is replaced in tests that need deterministic timestamps.
var now = func() time.Time { return time.Now().UTC() }

// commit writes t inside tx. It is the only code that updates
// equipment.status or equipment.assigned_to and the only writer of
// equipment_events.
func commit(ctx context.Context, tx *sql.Tx, t *transition) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE equipment SET status = ?, assigned_to = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.status, t.assignedTo, t.equipmentID,
	)
	if err != nil {
		return fmt.Errorf("updating equipment %d: %w", t.equipmentID, err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("updating equipment %d: %w", t.equipmentID, err)
	} else if n == 0 {
		return fmt.Errorf("updating equipment %d: %w", t.equipmentID, model.ErrNotFound)
	}

	ev := &t.event
	ev.EquipmentID = t.equipmentID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now()
	}
	result, err = tx.ExecContext(ctx,
		`INSERT INTO equipment_events (equipment_id, event_type, from_employee_id, to_employee_id,
		                               old_status, new_status, document_number, comment, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EquipmentID, ev.EventType, ev.FromEmployeeID, ev.ToEmployeeID,
		ev.OldStatus, ev.NewStatus, ev.DocumentNumber, ev.Comment, ev.CreatedBy, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording %s event: %w", ev.EventType, err)
	}
	ev.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting event id: %w", err)
	}
	return nil
}
