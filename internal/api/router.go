package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/inventar/internal/model"
)

// Options configures the API router.
type Options struct {
	JWTSecret string
	// BaseURL is the externally visible address printed in QR labels.
	BaseURL string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret}
	usersHandler := &UsersHandler{DB: db}
	dirHandler := &DirectoryHandler{DB: db}
	employeesHandler := &EmployeesHandler{DB: db}
	equipmentHandler := &EquipmentHandler{DB: db, BaseURL: opts.BaseURL}
	documentsHandler := &DocumentsHandler{DB: db}
	eventsHandler := &EventsHandler{DB: db}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	// can wraps h so it runs only for authenticated callers holding capability.
	can := func(capability string, h http.HandlerFunc) http.Handler {
		return authMW(RequireCapability(capability)(h))
	}

	const (
		view      = model.CapView
		directory = model.CapEditDirectory
		edit      = model.CapEditEquipment
		move      = model.CapMoveEquipment
		documents = model.CapEditDocuments
		users     = model.CapManageUsers
	)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated, any role.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users.
	mux.Handle("GET /api/users", can(users, usersHandler.List))
	mux.Handle("POST /api/users", can(users, usersHandler.Create))
	mux.Handle("PUT /api/users/{id}", can(users, usersHandler.Update))
	mux.Handle("DELETE /api/users/{id}", can(users, usersHandler.Delete))

	// Directory.
	mux.Handle("GET /api/organizations", can(view, dirHandler.ListOrganizations))
	mux.Handle("POST /api/organizations", can(directory, dirHandler.CreateOrganization))
	mux.Handle("GET /api/organizations/{id}", can(view, dirHandler.GetOrganization))
	mux.Handle("PUT /api/organizations/{id}", can(directory, dirHandler.UpdateOrganization))
	mux.Handle("DELETE /api/organizations/{id}", can(directory, dirHandler.DeleteOrganization))

	mux.Handle("GET /api/departments", can(view, dirHandler.ListDepartments))
	mux.Handle("POST /api/departments", can(directory, dirHandler.CreateDepartment))
	mux.Handle("GET /api/departments/{id}", can(view, dirHandler.GetDepartment))
	mux.Handle("PUT /api/departments/{id}", can(directory, dirHandler.UpdateDepartment))
	mux.Handle("DELETE /api/departments/{id}", can(directory, dirHandler.DeleteDepartment))

	mux.Handle("GET /api/equipment-types", can(view, dirHandler.ListEquipmentTypes))
	mux.Handle("POST /api/equipment-types", can(directory, dirHandler.CreateEquipmentType))
	mux.Handle("GET /api/equipment-types/{id}", can(view, dirHandler.GetEquipmentType))
	mux.Handle("PUT /api/equipment-types/{id}", can(directory, dirHandler.UpdateEquipmentType))
	mux.Handle("DELETE /api/equipment-types/{id}", can(directory, dirHandler.DeleteEquipmentType))

	// Employees.
	mux.Handle("GET /api/employees", can(view, employeesHandler.List))
	mux.Handle("POST /api/employees", can(edit, employeesHandler.Create))
	mux.Handle("GET /api/employees/{id}", can(view, employeesHandler.Get))
	mux.Handle("PUT /api/employees/{id}", can(edit, employeesHandler.Update))
	mux.Handle("DELETE /api/employees/{id}", can(edit, employeesHandler.Delete))

	// Equipment.
	mux.Handle("GET /api/equipment", can(view, equipmentHandler.List))
	mux.Handle("POST /api/equipment", can(edit, equipmentHandler.Create))
	mux.Handle("GET /api/equipment/export.xlsx", can(view, equipmentHandler.Export))
	mux.Handle("GET /api/equipment/{id}", can(view, equipmentHandler.Get))
	mux.Handle("PUT /api/equipment/{id}", can(edit, equipmentHandler.Update))
	mux.Handle("DELETE /api/equipment/{id}", can(edit, equipmentHandler.Delete))
	mux.Handle("POST /api/equipment/{id}/move", can(move, equipmentHandler.Move))
	mux.Handle("GET /api/equipment/{id}/events", can(view, equipmentHandler.History))
	mux.Handle("GET /api/equipment/{id}/label.png", can(view, equipmentHandler.Label))
	mux.Handle("GET /api/qr/{token}", can(view, equipmentHandler.GetByQRToken))

	// Documents.
	mux.Handle("GET /api/documents", can(view, documentsHandler.List))
	mux.Handle("POST /api/documents", can(documents, documentsHandler.Create))
	mux.Handle("GET /api/documents/{id}", can(view, documentsHandler.Get))
	mux.Handle("DELETE /api/documents/{id}", can(documents, documentsHandler.Delete))
	mux.Handle("POST /api/documents/{id}/lines", can(documents, documentsHandler.AddLine))
	mux.Handle("DELETE /api/documents/{id}/lines/{equipmentID}", can(documents, documentsHandler.RemoveLine))
	mux.Handle("POST /api/documents/{id}/apply", can(documents, documentsHandler.Apply))
	mux.Handle("GET /api/documents/{id}/export.xlsx", can(view, documentsHandler.Export))

	// Audit trail.
	mux.Handle("GET /api/events", can(view, eventsHandler.List))

	return LoggingMiddleware(mux)
}
