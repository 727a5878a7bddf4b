package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/inventar/internal/export"
	"github.com/erazemk/inventar/internal/lifecycle"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// DocumentsHandler handles inventory document endpoints.
type DocumentsHandler struct {
	DB *sql.DB
}

type createDocumentRequest struct {
	DocType        string `json:"doc_type" validate:"required,oneof=transfer write_off"`
	OrganizationID int64  `json:"organization_id" validate:"required"`
	Number         string `json:"number" validate:"required,max=64"`
	Date           string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FromEmployeeID *int64 `json:"from_employee_id"`
	ToEmployeeID   *int64 `json:"to_employee_id"`
	Comment        string `json:"comment" validate:"max=1000"`
}

type addLineRequest struct {
	EquipmentID int64 `json:"equipment_id" validate:"required"`
}

type applyResponse struct {
	Applied  bool                     `json:"applied"`
	Document *model.InventoryDocument `json:"document"`
}

// List handles GET /api/documents with organization_id, doc_type and applied filters.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.DocumentFilter
	var err error
	if f.OrganizationID, err = queryID(r, "organization_id"); err != nil {
		fieldError(w, "organization_id", "organization_id: must be an integer")
		return
	}
	f.DocType = q.Get("doc_type")
	if v := q.Get("applied"); v != "" {
		applied, err := strconv.ParseBool(v)
		if err != nil {
			fieldError(w, "applied", "applied: must be a boolean")
			return
		}
		f.Applied = &applied
	}

	docs, err := store.ListDocuments(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, err, "list documents")
		return
	}
	if docs == nil {
		docs = []model.InventoryDocument{}
	}
	jsonResponse(w, http.StatusOK, docs)
}

// Create handles POST /api/documents.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !bind(w, r, &req) {
		return
	}

	doc := &model.InventoryDocument{
		DocType:        req.DocType,
		OrganizationID: req.OrganizationID,
		Number:         req.Number,
		FromEmployeeID: req.FromEmployeeID,
		ToEmployeeID:   req.ToEmployeeID,
		CreatedBy:      actorID(r.Context()),
		Comment:        req.Comment,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			fieldError(w, "date", "date: expected YYYY-MM-DD")
			return
		}
		doc.Date = date
	}

	created, err := store.CreateDocument(r.Context(), h.DB, doc)
	if err != nil {
		storeError(w, err, "create document")
		return
	}

	slog.Info("document created", "user", actorName(r.Context()), "document_id", created.ID,
		"doc_type", created.DocType, "number", created.Number)
	jsonResponse(w, http.StatusCreated, created)
}

func (h *DocumentsHandler) load(w http.ResponseWriter, r *http.Request) (*model.InventoryDocument, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	doc, err := store.GetDocument(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get document")
		return nil, false
	}
	if doc == nil {
		jsonError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	if doc.Lines == nil {
		doc.Lines = []model.InventoryDocumentLine{}
	}
	return doc, true
}

// Get handles GET /api/documents/{id}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteDocument(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete document")
		return
	}

	slog.Info("document deleted", "user", actorName(r.Context()), "document_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /api/documents/{id}/lines.
func (h *DocumentsHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addLineRequest
	if !bind(w, r, &req) {
		return
	}

	line, err := store.AddDocumentLine(r.Context(), h.DB, id, req.EquipmentID)
	if err != nil {
		storeError(w, err, "add document line")
		return
	}

	slog.Info("document line added", "user", actorName(r.Context()), "document_id", id,
		"equipment_id", req.EquipmentID)
	jsonResponse(w, http.StatusCreated, line)
}

// RemoveLine handles DELETE /api/documents/{id}/lines/{equipmentID}.
func (h *DocumentsHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	equipmentID, ok := pathID(w, r, "equipmentID")
	if !ok {
		return
	}

	if err := store.RemoveDocumentLine(r.Context(), h.DB, id, equipmentID); err != nil {
		storeError(w, err, "remove document line")
		return
	}

	slog.Info("document line removed", "user", actorName(r.Context()), "document_id", id,
		"equipment_id", equipmentID)
	w.WriteHeader(http.StatusNoContent)
}

// Apply handles POST /api/documents/{id}/apply. Applying an already applied
// document succeeds with applied=false.
func (h *DocumentsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	applied, err := lifecycle.ApplyDocument(r.Context(), h.DB, id, actorID(r.Context()))
	if err != nil {
		storeError(w, err, "apply document")
		return
	}
	if applied {
		slog.Info("document applied", "user", actorName(r.Context()), "document_id", id)
	}

	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, applyResponse{Applied: applied, Document: doc})
}

// Export handles GET /api/documents/{id}/export.xlsx.
func (h *DocumentsHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.DocumentAct(&buf, doc); err != nil {
		storeError(w, err, "export document")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="act_%d.xlsx"`, doc.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
