package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/inventar/internal/model"
)

// DocumentFilter narrows ListDocuments. Zero values do not filter.
type DocumentFilter struct {
	OrganizationID int64
	DocType        string
	Applied        *bool
}

var documentSelect = sq.Select(
	"d.id", "d.doc_type", "d.organization_id", "d.number", "d.date",
	"d.from_employee_id", "d.to_employee_id", "d.created_by", "d.comment",
	"d.applied_at", "d.created_at",
	"o.name", "fe.full_name", "te.full_name",
).
	From("inventory_documents d").
	Join("organizations o ON o.id = d.organization_id").
	LeftJoin("employees fe ON fe.id = d.from_employee_id").
	LeftJoin("employees te ON te.id = d.to_employee_id")

func scanDocument(row rowScanner, d *model.InventoryDocument) error {
	var fromName, toName sql.NullString
	err := row.Scan(&d.ID, &d.DocType, &d.OrganizationID, &d.Number, &d.Date,
		&d.FromEmployeeID, &d.ToEmployeeID, &d.CreatedBy, &d.Comment,
		&d.AppliedAt, &d.CreatedAt,
		&d.OrganizationName, &fromName, &toName)
	d.FromEmployeeName = fromName.String
	d.ToEmployeeName = toName.String
	return err
}

// CreateDocument creates an unapplied document without lines. Both parties,
// when set, must belong to the document's organization.
func CreateDocument(ctx context.Context, q Querier, d *model.InventoryDocument) (*model.InventoryDocument, error) {
	d.Number = strings.TrimSpace(d.Number)
	if !model.ValidDocumentType(d.DocType) {
		return nil, model.Invalid("doc_type", "unknown document type %q", d.DocType)
	}
	if d.Number == "" {
		return nil, model.Invalid("number", "required")
	}

	org, err := GetOrganization(ctx, q, d.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, model.Invalid("organization_id", "organization not found")
	}

	if d.FromEmployeeID != nil {
		if err := checkHolder(ctx, q, *d.FromEmployeeID, d.OrganizationID, "from_employee_id"); err != nil {
			return nil, err
		}
	}
	if d.ToEmployeeID != nil {
		if err := checkHolder(ctx, q, *d.ToEmployeeID, d.OrganizationID, "to_employee_id"); err != nil {
			return nil, err
		}
	}

	if d.Date.IsZero() {
		d.Date = time.Now().UTC()
	}
	y, m, day := d.Date.Date()
	d.Date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)

	result, err := q.ExecContext(ctx,
		`INSERT INTO inventory_documents (doc_type, organization_id, number, date, from_employee_id,
		                                 to_employee_id, created_by, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DocType, d.OrganizationID, d.Number, d.Date, d.FromEmployeeID,
		d.ToEmployeeID, d.CreatedBy, d.Comment,
	)
	if err != nil {
		return nil, writeErr("creating document", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting document id: %w", err)
	}

	return GetDocument(ctx, q, id)
}

// GetDocumentHeader returns a document by ID without its lines.
func GetDocumentHeader(ctx context.Context, q Querier, id int64) (*model.InventoryDocument, error) {
	query, args, err := documentSelect.Where(sq.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building document query: %w", err)
	}

	d := &model.InventoryDocument{}
	err = scanDocument(q.QueryRowContext(ctx, query, args...), d)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return d, nil
}

// GetDocument returns a document by ID with its lines.
func GetDocument(ctx context.Context, q Querier, id int64) (*model.InventoryDocument, error) {
	d, err := GetDocumentHeader(ctx, q, id)
	if err != nil || d == nil {
		return d, err
	}

	lines, err := ListDocumentLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return d, nil
}

// ListDocuments returns document headers matching the filter, newest first.
func ListDocuments(ctx context.Context, q Querier, f DocumentFilter) ([]model.InventoryDocument, error) {
	b := documentSelect
	if f.OrganizationID > 0 {
		b = b.Where(sq.Eq{"d.organization_id": f.OrganizationID})
	}
	if f.DocType != "" {
		b = b.Where(sq.Eq{"d.doc_type": f.DocType})
	}
	if f.Applied != nil {
		if *f.Applied {
			b = b.Where(sq.NotEq{"d.applied_at": nil})
		} else {
			b = b.Where(sq.Eq{"d.applied_at": nil})
		}
	}

	query, args, err := b.OrderBy("d.date DESC", "d.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building document query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []model.InventoryDocument
	for rows.Next() {
		var d model.InventoryDocument
		if err := scanDocument(rows, &d); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListDocumentLines returns the lines of a document in insertion order.
func ListDocumentLines(ctx context.Context, q Querier, documentID int64) ([]model.InventoryDocumentLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, document_id, equipment_id, name_snapshot, type_snapshot,
		        inventory_number_snapshot, pc_number_snapshot
		 FROM inventory_document_lines WHERE document_id = ? ORDER BY id`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing document lines: %w", err)
	}
	defer rows.Close()

	var lines []model.InventoryDocumentLine
	for rows.Next() {
		var l model.InventoryDocumentLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.EquipmentID, &l.NameSnapshot, &l.TypeSnapshot,
			&l.InventoryNumberSnapshot, &l.PCNumberSnapshot); err != nil {
			return nil, fmt.Errorf("scanning document line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// editableDocument loads a document inside tx and refuses applied ones.
func editableDocument(ctx context.Context, tx *sql.Tx, documentID int64) (*model.InventoryDocument, error) {
	doc, err := GetDocumentHeader(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d: %w", documentID, model.ErrNotFound)
	}
	if doc.Applied() {
		return nil, fmt.Errorf("document %s: %w", doc.Number, model.ErrDocumentApplied)
	}
	return doc, nil
}

// AddDocumentLine lists an equipment item in an unapplied document. The line
// snapshot is taken from the equipment's current state and never changes.
func AddDocumentLine(ctx context.Context, db *sql.DB, documentID, equipmentID int64) (*model.InventoryDocumentLine, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := editableDocument(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}

	eq, err := GetEquipment(ctx, tx, equipmentID)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, model.Invalid("equipment_id", "equipment not found")
	}
	if eq.OrganizationID != doc.OrganizationID {
		return nil, model.Invalid("equipment_id", "equipment does not belong to the document's organization")
	}

	line := model.NewDocumentLine(doc.ID, eq)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_document_lines (document_id, equipment_id, name_snapshot, type_snapshot,
		                                      inventory_number_snapshot, pc_number_snapshot)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		line.DocumentID, line.EquipmentID, line.NameSnapshot, line.TypeSnapshot,
		line.InventoryNumberSnapshot, line.PCNumberSnapshot,
	)
	if err != nil {
		return nil, writeErr("adding document line", err)
	}

	line.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting document line id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing document line: %w", err)
	}
	return &line, nil
}

// RemoveDocumentLine removes an equipment item from an unapplied document.
func RemoveDocumentLine(ctx context.Context, db *sql.DB, documentID, equipmentID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := editableDocument(ctx, tx, documentID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM inventory_document_lines WHERE document_id = ? AND equipment_id = ?`,
		documentID, equipmentID,
	)
	if err != nil {
		return fmt.Errorf("removing document line: %w", err)
	}
	if err := updated("removing document line", result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing line removal: %w", err)
	}
	return nil
}

// DeleteDocument deletes an unapplied document and its lines. Applied
// documents are part of the audit trail and cannot be deleted.
func DeleteDocument(ctx context.Context, db *sql.DB, documentID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := editableDocument(ctx, tx, documentID); err != nil {
		return err
	}

	if err := deleteByID(ctx, tx, "deleting document", `DELETE FROM inventory_documents WHERE id = ?`, documentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document deletion: %w", err)
	}
	return nil
}
