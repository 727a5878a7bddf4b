package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// EmployeesHandler handles employee endpoints.
type EmployeesHandler struct {
	DB *sql.DB
}

type employeeRequest struct {
	OrganizationID int64  `json:"organization_id" validate:"required"`
	DepartmentID   int64  `json:"department_id" validate:"required"`
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Active         *bool  `json:"active"`
}

func (req *employeeRequest) employee() *model.Employee {
	return &model.Employee{
		OrganizationID: req.OrganizationID,
		DepartmentID:   req.DepartmentID,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Active:         req.Active == nil || *req.Active,
	}
}

// List handles GET /api/employees with organization_id, department_id,
// active and q filters.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.EmployeeFilter
	var err error
	if f.OrganizationID, err = queryID(r, "organization_id"); err != nil {
		fieldError(w, "organization_id", "organization_id: must be an integer")
		return
	}
	if f.DepartmentID, err = queryID(r, "department_id"); err != nil {
		fieldError(w, "department_id", "department_id: must be an integer")
		return
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			fieldError(w, "active", "active: must be a boolean")
			return
		}
		f.Active = &active
	}
	f.Search = q.Get("q")

	employees, err := store.ListEmployees(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, err, "list employees")
		return
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	jsonResponse(w, http.StatusOK, employees)
}

// Create handles POST /api/employees.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !bind(w, r, &req) {
		return
	}

	emp, err := store.CreateEmployee(r.Context(), h.DB, req.employee())
	if err != nil {
		storeError(w, err, "create employee")
		return
	}

	slog.Info("employee created", "user", actorName(r.Context()), "employee", emp.FullName)
	jsonResponse(w, http.StatusCreated, emp)
}

// Get handles GET /api/employees/{id}.
func (h *EmployeesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	emp, err := store.GetEmployee(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get employee")
		return
	}
	if emp == nil {
		jsonError(w, http.StatusNotFound, "employee not found")
		return
	}
	jsonResponse(w, http.StatusOK, emp)
}

// Update handles PUT /api/employees/{id}.
func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req employeeRequest
	if !bind(w, r, &req) {
		return
	}
	emp := req.employee()
	emp.ID = id

	if err := store.UpdateEmployee(r.Context(), h.DB, emp); err != nil {
		storeError(w, err, "update employee")
		return
	}

	updated, err := store.GetEmployee(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "get employee")
		return
	}
	slog.Info("employee updated", "user", actorName(r.Context()), "employee", updated.FullName)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/employees/{id}.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.DeleteEmployee(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "delete employee")
		return
	}

	slog.Info("employee deleted", "user", actorName(r.Context()), "employee_id", id)
	w.WriteHeader(http.StatusNoContent)
}
