package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// Fixed comments recorded on events produced by documents.
const (
	transferComment = "Передача по акту"
	writeOffComment = "Списано по акту"
)

// documentTransition builds the transition a document applies to one of its
// line's equipment.
func documentTransition(doc *model.InventoryDocument, eq *model.Equipment, actorID *int64) (*transition, error) {
	switch doc.DocType {
	case model.DocumentTransfer:
		return &transition{
			equipmentID: eq.ID,
			status:      model.StatusInUse,
			assignedTo:  doc.ToEmployeeID,
			event: model.EquipmentEvent{
				EventType:      model.EventAssign,
				FromEmployeeID: eq.AssignedTo,
				ToEmployeeID:   doc.ToEmployeeID,
				DocumentNumber: doc.Number,
				Comment:        transferComment,
				CreatedBy:      actorID,
			},
		}, nil
	case model.DocumentWriteOff:
		return &transition{
			equipmentID: eq.ID,
			status:      model.StatusWrittenOff,
			assignedTo:  nil,
			event: model.EquipmentEvent{
				EventType:      model.EventWriteOff,
				FromEmployeeID: eq.AssignedTo,
				OldStatus:      eq.Status,
				NewStatus:      model.StatusWrittenOff,
				DocumentNumber: doc.Number,
				Comment:        writeOffComment,
				CreatedBy:      actorID,
			},
		}, nil
	}
	return nil, fmt.Errorf("document %s: %w %q", doc.Number, model.ErrUnknownDocumentType, doc.DocType)
}

// ApplyDocument applies every line of a document to its equipment and stamps
// applied_at, all in one transaction. It reports false without error when the
// document had already been applied, including by a concurrent call.
func ApplyDocument(ctx context.Context, db *sql.DB, documentID int64, actorID *int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := store.GetDocument(ctx, tx, documentID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, fmt.Errorf("document %d: %w", documentID, model.ErrNotFound)
	}
	if doc.Applied() {
		return false, nil
	}
	if !model.ValidDocumentType(doc.DocType) {
		slog.Error("document has unknown type, nothing applied",
			"document_id", doc.ID, "number", doc.Number, "doc_type", doc.DocType)
		return false, fmt.Errorf("document %s: %w %q", doc.Number, model.ErrUnknownDocumentType, doc.DocType)
	}

	for _, line := range doc.Lines {
		eq, err := store.GetEquipment(ctx, tx, line.EquipmentID)
		if err != nil {
			return false, err
		}
		if eq == nil {
			return false, fmt.Errorf("equipment %d: %w", line.EquipmentID, model.ErrNotFound)
		}
		if doc.DocType == model.DocumentTransfer && doc.ToEmployeeID != nil {
			if err := store.CheckHolder(ctx, tx, *doc.ToEmployeeID, eq.OrganizationID); err != nil {
				return false, err
			}
		}

		t, err := documentTransition(doc, eq, actorID)
		if err != nil {
			return false, err
		}
		if err := commit(ctx, tx, t); err != nil {
			return false, err
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE inventory_documents SET applied_at = ? WHERE id = ? AND applied_at IS NULL`,
		now(), doc.ID,
	)
	if err != nil {
		return false, fmt.Errorf("stamping document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("stamping document: %w", err)
	}
	if n == 0 {
		// Someone else applied it first; roll back our line changes.
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing document: %w", err)
	}
	return true, nil
}
