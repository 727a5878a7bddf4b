package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// MoveRequest describes a manual reassignment and/or status change.
// A nil ToEmployeeID unassigns the equipment.
type MoveRequest struct {
	EquipmentID    int64
	ToEmployeeID   *int64
	NewStatus      string
	DocumentNumber string
	Comment        string
	ActorID        *int64
}

// moveTransition builds the transition for req applied to eq. The status pair
// is recorded only when the status actually changes.
func moveTransition(eq *model.Equipment, req MoveRequest) *transition {
	t := &transition{
		equipmentID: eq.ID,
		status:      req.NewStatus,
		assignedTo:  req.ToEmployeeID,
		event: model.EquipmentEvent{
			EventType:      model.EventMove,
			FromEmployeeID: eq.AssignedTo,
			ToEmployeeID:   req.ToEmployeeID,
			DocumentNumber: strings.TrimSpace(req.DocumentNumber),
			Comment:        strings.TrimSpace(req.Comment),
			CreatedBy:      req.ActorID,
		},
	}
	if eq.Status != req.NewStatus {
		t.event.OldStatus = eq.Status
		t.event.NewStatus = req.NewStatus
	}
	return t
}

// Move assigns equipment to an employee (or unassigns it) and sets its
// status, appending one move event. Validation failures leave the equipment
// untouched.
func Move(ctx context.Context, db *sql.DB, req MoveRequest) (*model.Equipment, *model.EquipmentEvent, error) {
	if !model.ValidStatus(req.NewStatus) {
		return nil, nil, model.Invalid("new_status", "unknown status %q", req.NewStatus)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	eq, err := store.GetEquipment(ctx, tx, req.EquipmentID)
	if err != nil {
		return nil, nil, err
	}
	if eq == nil {
		return nil, nil, fmt.Errorf("equipment %d: %w", req.EquipmentID, model.ErrNotFound)
	}

	if !model.AllowedTransition(eq.Status, req.NewStatus) {
		return nil, nil, model.Invalid("new_status", "cannot change status from %s to %s", eq.Status, req.NewStatus)
	}
	if req.ToEmployeeID != nil {
		if err := store.CheckHolder(ctx, tx, *req.ToEmployeeID, eq.OrganizationID); err != nil {
			return nil, nil, err
		}
	}

	t := moveTransition(eq, req)
	if err := commit(ctx, tx, t); err != nil {
		return nil, nil, err
	}

	moved, err := store.GetEquipment(ctx, tx, eq.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing move: %w", err)
	}
	return moved, &t.event, nil
}
