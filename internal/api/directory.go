package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// DirectoryHandler serves organizations, departments and equipment types.
type DirectoryHandler struct {
	DB *sql.DB
}

type organizationRequest struct {
	Code   string `json:"code" validate:"required,max=3"`
	Name   string `json:"name" validate:"required"`
	Active bool   `json:"active"`
}

type departmentRequest struct {
	OrganizationID int64  `json:"organization_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Active         *bool  `json:"active"`
}

type equipmentTypeRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required,oneof=computer print other"`
}

// ListOrganizations handles GET /api/organizations[?active=1].
func (h *DirectoryHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := store.ListOrganizations(r.Context(), h.DB, r.URL.Query().Get("active") == "1")
	if err != nil {
		storeError(w, err, "list organizations")
		return
	}
	if orgs == nil {
		orgs = []model.Organization{}
	}
	jsonResponse(w, http.StatusOK, orgs)
}

// CreateOrganization handles POST /api/organizations.
func (h *DirectoryHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !bind(w, r, &req) {
		return
	}

	org, err := store.CreateOrganization(r.Context(), h.DB, req.Code, req.Name, req.Active)
	if err != nil {
		storeError(w, err, "create organization")
		return
	}

	slog.Info("organization created", "user", actorName(r.Context()), "code", org.Code)
	jsonResponse(w, http.StatusCreated, org)
}

// GetOrganization handles GET /api/organizations/{id}.
func (h *DirectoryHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	org, err := store.GetOrganization(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get organization")
		return
	}
	if org == nil {
		jsonError(w, http.StatusNotFound, "organization not found")
		return
	}
	jsonResponse(w, http.StatusOK, org)
}

// UpdateOrganization handles PUT /api/organizations/{id}.
func (h *DirectoryHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req organizationRequest
	if !bind(w, r, &req) {
		return
	}

	if err := store.UpdateOrganization(r.Context(), h.DB, id, req.Code, req.Name, req.Active); err != nil {
		storeError(w, err, "update organization")
		return
	}

	org, err := store.GetOrganization(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get organization")
		return
	}
	slog.Info("organization updated", "user", actorName(r.Context()), "code", org.Code)
	jsonResponse(w, http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/organizations/{id}.
func (h *DirectoryHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteOrganization(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete organization")
		return
	}

	slog.Info("organization deleted", "user", actorName(r.Context()), "organization_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListDepartments handles GET /api/departments?organization_id=N.
func (h *DirectoryHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryID(r, "organization_id")
	if err != nil || orgID == 0 {
		fieldError(w, "organization_id", "organization_id: required")
		return
	}

	depts, err := store.ListDepartments(r.Context(), h.DB, orgID)
	if err != nil {
		storeError(w, err, "list departments")
		return
	}
	if depts == nil {
		depts = []model.Department{}
	}
	jsonResponse(w, http.StatusOK, depts)
}

// CreateDepartment handles POST /api/departments.
func (h *DirectoryHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if !bind(w, r, &req) {
		return
	}
	active := req.Active == nil || *req.Active

	dept, err := store.CreateDepartment(r.Context(), h.DB, req.OrganizationID, req.Name, active)
	if err != nil {
		storeError(w, err, "create department")
		return
	}

	slog.Info("department created", "user", actorName(r.Context()), "name", dept.Name,
		"organization_id", dept.OrganizationID)
	jsonResponse(w, http.StatusCreated, dept)
}

// GetDepartment handles GET /api/departments/{id}.
func (h *DirectoryHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	dept, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get department")
		return
	}
	if dept == nil {
		jsonError(w, http.StatusNotFound, "department not found")
		return
	}
	jsonResponse(w, http.StatusOK, dept)
}

// UpdateDepartment handles PUT /api/departments/{id}. A department never
// changes organization.
func (h *DirectoryHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req departmentRequest
	if !bind(w, r, &req) {
		return
	}

	current, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get department")
		return
	}
	if current == nil {
		jsonError(w, http.StatusNotFound, "department not found")
		return
	}
	if current.OrganizationID != req.OrganizationID {
		fieldError(w, "organization_id", "organization_id: a department cannot change organization")
		return
	}
	active := req.Active == nil || *req.Active

	if err := store.UpdateDepartment(r.Context(), h.DB, id, req.Name, active); err != nil {
		storeError(w, err, "update department")
		return
	}

	dept, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get department")
		return
	}
	jsonResponse(w, http.StatusOK, dept)
}

// DeleteDepartment handles DELETE /api/departments/{id}.
func (h *DirectoryHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteDepartment(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete department")
		return
	}

	slog.Info("department deleted", "user", actorName(r.Context()), "department_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListEquipmentTypes handles GET /api/equipment-types.
func (h *DirectoryHandler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := store.ListEquipmentTypes(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "list equipment types")
		return
	}
	if types == nil {
		types = []model.EquipmentType{}
	}
	jsonResponse(w, http.StatusOK, types)
}

// CreateEquipmentType handles POST /api/equipment-types.
func (h *DirectoryHandler) CreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	var req equipmentTypeRequest
	if !bind(w, r, &req) {
		return
	}

	et, err := store.CreateEquipmentType(r.Context(), h.DB, req.Name, req.Category)
	if err != nil {
		storeError(w, err, "create equipment type")
		return
	}

	slog.Info("equipment type created", "user", actorName(r.Context()), "name", et.Name, "category", et.Category)
	jsonResponse(w, http.StatusCreated, et)
}

// GetEquipmentType handles GET /api/equipment-types/{id}.
func (h *DirectoryHandler) GetEquipmentType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	et, err := store.GetEquipmentType(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get equipment type")
		return
	}
	if et == nil {
		jsonError(w, http.StatusNotFound, "equipment type not found")
		return
	}
	jsonResponse(w, http.StatusOK, et)
}

// UpdateEquipmentType handles PUT /api/equipment-types/{id}.
func (h *DirectoryHandler) UpdateEquipmentType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req equipmentTypeRequest
	if !bind(w, r, &req) {
		return
	}

	if err := store.UpdateEquipmentType(r.Context(), h.DB, id, req.Name, req.Category); err != nil {
		storeError(w, err, "update equipment type")
		return
	}

	et, err := store.GetEquipmentType(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get equipment type")
		return
	}
	jsonResponse(w, http.StatusOK, et)
}

// DeleteEquipmentType handles DELETE /api/equipment-types/{id}.
func (h *DirectoryHandler) DeleteEquipmentType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteEquipmentType(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete equipment type")
		return
	}

	slog.Info("equipment type deleted", "user", actorName(r.Context()), "equipment_type_id", id)
	w.WriteHeader(http.StatusNoContent)
}
