package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

func TestMoveAssignsAndRecordsEvent(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusReserve, nil)

	moved, ev, err := Move(context.Background(), f.db, MoveRequest{
		EquipmentID:    eq.ID,
		ToEmployeeID:   ptr(f.alice.ID),
		NewStatus:      model.StatusInUse,
		DocumentNumber: " M-1 ",
		Comment:        "new hire",
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	if moved.AssignedTo == nil || *moved.AssignedTo != f.alice.ID {
		t.Errorf("expected holder %d, got %v", f.alice.ID, moved.AssignedTo)
	}
	if moved.Status != model.StatusInUse {
		t.Errorf("expected status in_use, got %q", moved.Status)
	}
	if moved.AssignedToName != "Alice Novak" {
		t.Errorf("expected holder name, got %q", moved.AssignedToName)
	}

	events := f.events(t, store.EventFilter{EquipmentID: eq.ID})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID != ev.ID || got.EventType != model.EventMove {
		t.Errorf("unexpected event %+v", got)
	}
	if got.FromEmployeeID != nil {
		t.Errorf("expected no previous holder, got %v", *got.FromEmployeeID)
	}
	if got.ToEmployeeID == nil || *got.ToEmployeeID != f.alice.ID {
		t.Errorf("expected to_employee %d, got %v", f.alice.ID, got.ToEmployeeID)
	}
	if got.OldStatus != model.StatusReserve || got.NewStatus != model.StatusInUse {
		t.Errorf("expected reserve -> in_use, got %q -> %q", got.OldStatus, got.NewStatus)
	}
	if got.DocumentNumber != "M-1" || got.Comment != "new hire" {
		t.Errorf("unexpected document/comment %q/%q", got.DocumentNumber, got.Comment)
	}
}

func TestMoveWithoutStatusChangeLeavesStatusPairEmpty(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusInUse, f.alice)

	_, ev, err := Move(context.Background(), f.db, MoveRequest{
		EquipmentID:  eq.ID,
		ToEmployeeID: ptr(f.bob.ID),
		NewStatus:    model.StatusInUse,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if ev.OldStatus != "" || ev.NewStatus != "" {
		t.Errorf("expected empty status pair, got %q -> %q", ev.OldStatus, ev.NewStatus)
	}
	if ev.FromEmployeeID == nil || *ev.FromEmployeeID != f.alice.ID {
		t.Errorf("expected from_employee %d, got %v", f.alice.ID, ev.FromEmployeeID)
	}
}

func TestMoveUnassigns(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusInUse, f.alice)

	moved, _, err := Move(context.Background(), f.db, MoveRequest{
		EquipmentID: eq.ID,
		NewStatus:   model.StatusReserve,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.AssignedTo != nil {
		t.Errorf("expected unassigned, got %d", *moved.AssignedTo)
	}
}

func TestMoveToOtherOrganizationFails(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusInUse, f.alice)

	_, _, err := Move(context.Background(), f.db, MoveRequest{
		EquipmentID:  eq.ID,
		ToEmployeeID: ptr(f.outsider.ID),
		NewStatus:    model.StatusRepair,
	})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != "to_employee_id" {
		t.Errorf("expected field to_employee_id, got %q", ve.Field)
	}

	got := f.reload(t, eq.ID)
	if got.Status != model.StatusInUse || got.AssignedTo == nil || *got.AssignedTo != f.alice.ID {
		t.Errorf("equipment changed after failed move: %+v", got)
	}
	if n := len(f.events(t, store.EventFilter{EquipmentID: eq.ID})); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}

func TestMoveRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusInUse, nil)
	ctx := context.Background()

	if _, _, err := Move(ctx, f.db, MoveRequest{EquipmentID: eq.ID, NewStatus: "lost"}); !model.IsValidation(err) {
		t.Errorf("unknown status: expected validation error, got %v", err)
	}
	if _, _, err := Move(ctx, f.db, MoveRequest{EquipmentID: 999, NewStatus: model.StatusRepair}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing equipment: expected ErrNotFound, got %v", err)
	}
	if _, _, err := Move(ctx, f.db, MoveRequest{EquipmentID: eq.ID, ToEmployeeID: ptr(999), NewStatus: model.StatusRepair}); !model.IsValidation(err) {
		t.Errorf("missing employee: expected validation error, got %v", err)
	}
}

func TestMoveOutOfWrittenOffAllowed(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusWrittenOff, nil)

	moved, _, err := Move(context.Background(), f.db, MoveRequest{
		EquipmentID: eq.ID,
		NewStatus:   model.StatusReserve,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Status != model.StatusReserve {
		t.Errorf("expected reserve, got %q", moved.Status)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusReserve, nil)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	step := 0
	now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}
	t.Cleanup(func() { now = func() time.Time { return time.Now().UTC() } })

	statuses := []string{model.StatusInUse, model.StatusRepair, model.StatusInUse}
	for _, s := range statuses {
		if _, _, err := Move(ctx, f.db, MoveRequest{EquipmentID: eq.ID, NewStatus: s}); err != nil {
			t.Fatalf("Move(%s): %v", s, err)
		}
	}

	history, err := store.GetEquipmentHistory(ctx, f.db, eq.ID)
	if err != nil {
		t.Fatalf("GetEquipmentHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 events, got %d", len(history))
	}
	if history[0].OldStatus != model.StatusRepair || history[2].OldStatus != model.StatusReserve {
		t.Errorf("expected newest first, got %q ... %q", history[0].OldStatus, history[2].OldStatus)
	}
	if !history[0].CreatedAt.After(history[2].CreatedAt) {
		t.Errorf("expected descending timestamps, got %v then %v", history[0].CreatedAt, history[2].CreatedAt)
	}
}

func TestEventsAreImmutable(t *testing.T) {
	f := newFixture(t)
	eq := f.equipment(t, "Monitor", model.StatusReserve, nil)
	ctx := context.Background()

	_, ev, err := Move(ctx, f.db, MoveRequest{EquipmentID: eq.ID, NewStatus: model.StatusInUse})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	if _, err := f.db.ExecContext(ctx, `UPDATE equipment_events SET comment = 'x' WHERE id = ?`, ev.ID); err == nil {
		t.Error("expected update of event to fail")
	}
	if _, err := f.db.ExecContext(ctx, `DELETE FROM equipment_events WHERE id = ?`, ev.ID); err == nil {
		t.Error("expected delete of event to fail")
	}
}
