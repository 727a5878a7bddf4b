package api

import (
	"bytes"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/inventar/internal/export"
	"github.com/erazemk/inventar/internal/label"
	"github.com/erazemk/inventar/internal/lifecycle"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// EquipmentHandler handles equipment endpoints.
type EquipmentHandler struct {
	DB      *sql.DB
	BaseURL string
}

const dateLayout = "2006-01-02"

type equipmentRequest struct {
	OrganizationID    int64  `json:"organization_id" validate:"required"`
	EquipmentTypeID   int64  `json:"equipment_type_id" validate:"required"`
	Name              string `json:"name" validate:"required,max=200"`
	InventoryNumber   string `json:"inventory_number" validate:"max=64"`
	PCNumber          string `json:"pc_number" validate:"max=64"`
	SerialNumber      string `json:"serial_number" validate:"max=128"`
	Model             string `json:"model"`
	Specs             string `json:"specs"`
	CommissioningDate string `json:"commissioning_date" validate:"omitempty,datetime=2006-01-02"`
	CPU               string `json:"cpu"`
	RAMGB             int    `json:"ram_gb" validate:"min=0"`
	Storage           string `json:"storage"`
	PrintFormat       string `json:"print_format" validate:"omitempty,oneof=A4 A3"`
	PrintMode         string `json:"print_mode" validate:"omitempty,oneof=mono color"`

	// Only honoured on create; afterwards status and holder change by moving.
	Status     string `json:"status" validate:"omitempty,oneof=reserve repair in_use to_transfer to_write_off written_off"`
	AssignedTo *int64 `json:"assigned_to"`
}

func (req *equipmentRequest) equipment() (*model.Equipment, error) {
	e := &model.Equipment{
		OrganizationID:  req.OrganizationID,
		EquipmentTypeID: req.EquipmentTypeID,
		Name:            req.Name,
		InventoryNumber: req.InventoryNumber,
		PCNumber:        req.PCNumber,
		SerialNumber:    req.SerialNumber,
		Model:           req.Model,
		Specs:           req.Specs,
		CPU:             req.CPU,
		RAMGB:           req.RAMGB,
		Storage:         req.Storage,
		PrintFormat:     req.PrintFormat,
		PrintMode:       req.PrintMode,
		Status:          req.Status,
		AssignedTo:      req.AssignedTo,
	}
	if req.CommissioningDate != "" {
		d, err := time.Parse(dateLayout, req.CommissioningDate)
		if err != nil {
			return nil, model.Invalid("commissioning_date", "expected YYYY-MM-DD")
		}
		e.CommissioningDate = &d
	}
	return e, nil
}

type moveRequest struct {
	ToEmployeeID   *int64 `json:"to_employee_id"`
	NewStatus      string `json:"new_status" validate:"required,oneof=reserve repair in_use to_transfer to_write_off written_off"`
	DocumentNumber string `json:"document_number" validate:"max=64"`
	Comment        string `json:"comment" validate:"max=1000"`
}

type moveResponse struct {
	Equipment *model.Equipment      `json:"equipment"`
	Event     *model.EquipmentEvent `json:"event"`
}

// equipmentFilter reads the list filters shared by List and Export.
func equipmentFilter(w http.ResponseWriter, r *http.Request) (store.EquipmentFilter, bool) {
	q := r.URL.Query()
	f := store.EquipmentFilter{Status: q.Get("status"), Search: q.Get("q")}

	for name, dst := range map[string]*int64{
		"organization_id":   &f.OrganizationID,
		"equipment_type_id": &f.EquipmentTypeID,
		"assigned_to":       &f.AssignedTo,
	} {
		v, err := queryID(r, name)
		if err != nil {
			fieldError(w, name, name+": must be an integer")
			return f, false
		}
		*dst = v
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		fieldError(w, "status", "status: unknown status")
		return f, false
	}
	for name, dst := range map[string]**time.Time{
		"commissioned_from":  &f.CommissionedFrom,
		"commissioned_until": &f.CommissionedUntil,
	} {
		if v := q.Get(name); v != "" {
			d, err := time.Parse(dateLayout, v)
			if err != nil {
				fieldError(w, name, name+": must be YYYY-MM-DD")
				return f, false
			}
			*dst = &d
		}
	}
	return f, true
}

// List handles GET /api/equipment.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := equipmentFilter(w, r)
	if !ok {
		return
	}

	items, err := store.ListEquipment(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, err, "list equipment")
		return
	}
	if items == nil {
		items = []model.Equipment{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Export handles GET /api/equipment/export.xlsx with the List filters.
func (h *EquipmentHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := equipmentFilter(w, r)
	if !ok {
		return
	}

	items, err := store.ListEquipment(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, err, "list equipment")
		return
	}

	var buf bytes.Buffer
	if err := export.EquipmentList(&buf, items); err != nil {
		storeError(w, err, "export equipment")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="equipment_`+time.Now().Format(dateLayout)+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Create handles POST /api/equipment.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if !bind(w, r, &req) {
		return
	}

	e, err := req.equipment()
	if err != nil {
		storeError(w, err, "create equipment")
		return
	}

	eq, err := store.CreateEquipment(r.Context(), h.DB, e)
	if err != nil {
		storeError(w, err, "create equipment")
		return
	}

	slog.Info("equipment created", "user", actorName(r.Context()), "equipment_id", eq.ID, "name", eq.Name)
	jsonResponse(w, http.StatusCreated, eq)
}

// Get handles GET /api/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respondEquipment(w, r, func() (*model.Equipment, error) {
		return store.GetEquipment(r.Context(), h.DB, id)
	})
}

// GetByQRToken handles GET /api/qr/{token}, the address printed on labels.
func (h *EquipmentHandler) GetByQRToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	h.respondEquipment(w, r, func() (*model.Equipment, error) {
		return store.GetEquipmentByQRToken(r.Context(), h.DB, token)
	})
}

func (h *EquipmentHandler) respondEquipment(w http.ResponseWriter, r *http.Request, get func() (*model.Equipment, error)) {
	eq, err := get()
	if err != nil {
		storeError(w, err, "get equipment")
		return
	}
	if eq == nil {
		jsonError(w, http.StatusNotFound, "equipment not found")
		return
	}
	jsonResponse(w, http.StatusOK, eq)
}

// Update handles PUT /api/equipment/{id}.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req equipmentRequest
	if !bind(w, r, &req) {
		return
	}
	eq, err := req.equipment()
	if err != nil {
		storeError(w, err, "update equipment")
		return
	}
	eq.ID = id

	if err := store.UpdateEquipment(r.Context(), h.DB, eq); err != nil {
		storeError(w, err, "update equipment")
		return
	}

	updated, err := store.GetEquipment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get equipment")
		return
	}
	slog.Info("equipment updated", "user", actorName(r.Context()), "equipment_id", id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteEquipment(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete equipment")
		return
	}

	slog.Info("equipment deleted", "user", actorName(r.Context()), "equipment_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /api/equipment/{id}/move.
func (h *EquipmentHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req moveRequest
	if !bind(w, r, &req) {
		return
	}

	eq, ev, err := lifecycle.Move(r.Context(), h.DB, lifecycle.MoveRequest{
		EquipmentID:    id,
		ToEmployeeID:   req.ToEmployeeID,
		NewStatus:      req.NewStatus,
		DocumentNumber: req.DocumentNumber,
		Comment:        req.Comment,
		ActorID:        actorID(r.Context()),
	})
	if err != nil {
		storeError(w, err, "move equipment")
		return
	}

	slog.Info("equipment moved", "user", actorName(r.Context()), "equipment_id", id,
		"status", eq.Status, "holder", eq.AssignedToName, "event_id", ev.ID)
	jsonResponse(w, http.StatusOK, moveResponse{Equipment: eq, Event: ev})
}

// History handles GET /api/equipment/{id}/events.
func (h *EquipmentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	events, err := store.GetEquipmentHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get equipment history")
		return
	}
	if events == nil {
		events = []model.EquipmentEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Label handles GET /api/equipment/{id}/label.png.
func (h *EquipmentHandler) Label(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	eq, err := store.GetEquipment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get equipment")
		return
	}
	if eq == nil {
		jsonError(w, http.StatusNotFound, "equipment not found")
		return
	}

	var buf bytes.Buffer
	if err := label.Render(&buf, label.ForEquipment(h.BaseURL, eq)); err != nil {
		storeError(w, err, "render label")
		return
	}

	w.Header().Set("Content-Type", label.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
