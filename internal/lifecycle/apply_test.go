package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

func TestApplyTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []*model.Equipment{
		f.equipment(t, "A", model.StatusReserve, nil),
		f.equipment(t, "B", model.StatusRepair, f.alice),
		f.equipment(t, "C", model.StatusToTransfer, f.bob),
	}
	doc := f.document(t, model.DocumentTransfer, "T-1", f.bob, items...)

	applied, err := ApplyDocument(ctx, f.db, doc.ID, nil)
	if err != nil {
		t.Fatalf("ApplyDocument: %v", err)
	}
	if !applied {
		t.Fatal("expected document to be applied")
	}

	for _, before := range items {
		after := f.reload(t, before.ID)
		if after.AssignedTo == nil || *after.AssignedTo != f.bob.ID {
			t.Errorf("%s: expected holder %d, got %v", before.Name, f.bob.ID, after.AssignedTo)
		}
		if after.Status != model.StatusInUse {
			t.Errorf("%s: expected in_use, got %q", before.Name, after.Status)
		}

		events := f.events(t, store.EventFilter{EquipmentID: before.ID})
		if len(events) != 1 {
			t.Fatalf("%s: expected 1 event, got %d", before.Name, len(events))
		}
		ev := events[0]
		if ev.EventType != model.EventAssign || ev.DocumentNumber != "T-1" || ev.Comment != transferComment {
			t.Errorf("%s: unexpected event %+v", before.Name, ev)
		}
		if (before.AssignedTo == nil) != (ev.FromEmployeeID == nil) {
			t.Errorf("%s: from_employee mismatch: before %v, event %v", before.Name, before.AssignedTo, ev.FromEmployeeID)
		}
	}

	got, _ := store.GetDocumentHeader(ctx, f.db, doc.ID)
	if !got.Applied() {
		t.Error("expected applied_at to be set")
	}
}

func TestApplyWriteOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.equipment(t, "A", model.StatusToWriteOff, f.alice)
	b := f.equipment(t, "B", model.StatusRepair, nil)
	doc := f.document(t, model.DocumentWriteOff, "WO-1", nil, a, b)

	if _, err := ApplyDocument(ctx, f.db, doc.ID, nil); err != nil {
		t.Fatalf("ApplyDocument: %v", err)
	}

	for _, before := range []*model.Equipment{a, b} {
		after := f.reload(t, before.ID)
		if after.AssignedTo != nil {
			t.Errorf("%s: expected unassigned, got %d", before.Name, *after.AssignedTo)
		}
		if after.Status != model.StatusWrittenOff {
			t.Errorf("%s: expected written_off, got %q", before.Name, after.Status)
		}

		events := f.events(t, store.EventFilter{EquipmentID: before.ID, EventType: model.EventWriteOff})
		if len(events) != 1 {
			t.Fatalf("%s: expected 1 write_off event, got %d", before.Name, len(events))
		}
		ev := events[0]
		if ev.OldStatus != before.Status || ev.NewStatus != model.StatusWrittenOff {
			t.Errorf("%s: expected %s -> written_off, got %q -> %q", before.Name, before.Status, ev.OldStatus, ev.NewStatus)
		}
		if ev.Comment != writeOffComment || ev.DocumentNumber != "WO-1" {
			t.Errorf("%s: unexpected comment/number %q/%q", before.Name, ev.Comment, ev.DocumentNumber)
		}
	}

	// from_employee is the holder at application time.
	events := f.events(t, store.EventFilter{EquipmentID: a.ID})
	if events[0].FromEmployeeID == nil || *events[0].FromEmployeeID != f.alice.ID {
		t.Errorf("expected from_employee %d, got %v", f.alice.ID, events[0].FromEmployeeID)
	}
}

func TestApplyTwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.equipment(t, "A", model.StatusReserve, nil)
	doc := f.document(t, model.DocumentTransfer, "T-1", f.alice, eq)

	if _, err := ApplyDocument(ctx, f.db, doc.ID, nil); err != nil {
		t.Fatalf("first ApplyDocument: %v", err)
	}
	first, _ := store.GetDocumentHeader(ctx, f.db, doc.ID)

	// Change the equipment after application; a second apply must not undo it.
	if _, _, err := Move(ctx, f.db, MoveRequest{EquipmentID: eq.ID, NewStatus: model.StatusRepair}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	applied, err := ApplyDocument(ctx, f.db, doc.ID, nil)
	if err != nil {
		t.Fatalf("second ApplyDocument: %v", err)
	}
	if applied {
		t.Error("expected second application to be a no-op")
	}

	after := f.reload(t, eq.ID)
	if after.Status != model.StatusRepair || after.AssignedTo != nil {
		t.Errorf("equipment changed by second apply: %+v", after)
	}
	if n := len(f.events(t, store.EventFilter{EquipmentID: eq.ID})); n != 2 {
		t.Errorf("expected 2 events (assign + move), got %d", n)
	}
	second, _ := store.GetDocumentHeader(ctx, f.db, doc.ID)
	if !second.AppliedAt.Equal(*first.AppliedAt) {
		t.Errorf("applied_at changed: %v -> %v", first.AppliedAt, second.AppliedAt)
	}
}

func TestApplyMissingDocument(t *testing.T) {
	f := newFixture(t)
	if _, err := ApplyDocument(context.Background(), f.db, 999, nil); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.equipment(t, "A", model.StatusReserve, nil)
	b := f.equipment(t, "B", model.StatusReserve, nil)
	doc := f.document(t, model.DocumentTransfer, "T-1", f.alice, a, b)

	// Fail on the second line, after the first has already been written.
	trigger := fmt.Sprintf(`CREATE TRIGGER fail_second_line BEFORE UPDATE OF status ON equipment
		WHEN NEW.id = %d BEGIN SELECT RAISE(ABORT, 'boom'); END`, b.ID)
	if _, err := f.db.ExecContext(ctx, trigger); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}

	if _, err := ApplyDocument(ctx, f.db, doc.ID, nil); err == nil {
		t.Fatal("expected ApplyDocument to fail")
	}

	for _, eq := range []*model.Equipment{a, b} {
		after := f.reload(t, eq.ID)
		if after.Status != model.StatusReserve || after.AssignedTo != nil {
			t.Errorf("%s: equipment changed after failed apply: %+v", eq.Name, after)
		}
	}
	if n := len(f.events(t, store.EventFilter{})); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
	got, _ := store.GetDocumentHeader(ctx, f.db, doc.ID)
	if got.Applied() {
		t.Fatal("expected applied_at to remain null")
	}

	// The failure is transient; a retry succeeds.
	if _, err := f.db.ExecContext(ctx, `DROP TRIGGER fail_second_line`); err != nil {
		t.Fatalf("dropping trigger: %v", err)
	}
	applied, err := ApplyDocument(ctx, f.db, doc.ID, nil)
	if err != nil || !applied {
		t.Fatalf("retry: applied=%v err=%v", applied, err)
	}
	if n := len(f.events(t, store.EventFilter{DocumentNumber: "T-1"})); n != 2 {
		t.Errorf("expected 2 events after retry, got %d", n)
	}
}

func TestApplyConcurrentAppliesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []*model.Equipment{
		f.equipment(t, "A", model.StatusReserve, nil),
		f.equipment(t, "B", model.StatusReserve, nil),
	}
	doc := f.document(t, model.DocumentTransfer, "T-1", f.alice, items...)

	var wins atomic.Int32
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			applied, err := ApplyDocument(ctx, f.db, doc.ID, nil)
			if applied {
				wins.Add(1)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("ApplyDocument: %v", err)
	}

	if n := wins.Load(); n != 1 {
		t.Errorf("expected exactly one application, got %d", n)
	}
	if n := len(f.events(t, store.EventFilter{DocumentNumber: "T-1"})); n != len(items) {
		t.Errorf("expected %d events, got %d", len(items), n)
	}
}

func TestDocumentTransitionUnknownType(t *testing.T) {
	doc := &model.InventoryDocument{DocType: "loan", Number: "L-1"}
	eq := &model.Equipment{ID: 1, Status: model.StatusInUse}

	if _, err := documentTransition(doc, eq, nil); !errors.Is(err, model.ErrUnknownDocumentType) {
		t.Errorf("expected ErrUnknownDocumentType, got %v", err)
	}
}

func TestApplyUnknownTypeProcessesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.equipment(t, "A", model.StatusReserve, nil)
	doc := f.document(t, model.DocumentTransfer, "T-1", f.alice, eq)

	// Simulate a row written before the type check existed. The pragma is
	// per connection, so pin the pool to one.
	f.db.SetMaxOpenConns(1)
	if _, err := f.db.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if _, err := f.db.ExecContext(ctx, `UPDATE inventory_documents SET doc_type = 'loan' WHERE id = ?`, doc.ID); err != nil {
		t.Fatalf("corrupting document: %v", err)
	}

	_, err := ApplyDocument(ctx, f.db, doc.ID, nil)
	if !errors.Is(err, model.ErrUnknownDocumentType) {
		t.Fatalf("expected ErrUnknownDocumentType, got %v", err)
	}
	after := f.reload(t, eq.ID)
	if after.Status != model.StatusReserve || after.AssignedTo != nil {
		t.Errorf("equipment changed: %+v", after)
	}
	got, _ := store.GetDocumentHeader(ctx, f.db, doc.ID)
	if got.Applied() {
		t.Error("expected document to stay unapplied")
	}
}

func TestApplyRecipientMovedOrganizationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.equipment(t, "A", model.StatusReserve, nil)
	doc := f.document(t, model.DocumentTransfer, "T-1", f.bob, eq)

	// Bob holds nothing, so he may change organization after the act was drawn up.
	moved := *f.bob
	moved.OrganizationID = f.outsider.OrganizationID
	moved.DepartmentID = f.outsider.DepartmentID
	if err := store.UpdateEmployee(ctx, f.db, &moved); err != nil {
		t.Fatalf("UpdateEmployee: %v", err)
	}

	if _, err := ApplyDocument(ctx, f.db, doc.ID, nil); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := len(f.events(t, store.EventFilter{})); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}
