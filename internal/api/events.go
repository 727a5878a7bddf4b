package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// EventsHandler serves the audit trail across all equipment.
type EventsHandler struct {
	DB *sql.DB
}

const defaultEventLimit = 200

// List handles GET /api/events with equipment_id, event_type, document_number
// and limit filters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.EventFilter{
		EventType:      q.Get("event_type"),
		DocumentNumber: q.Get("document_number"),
		Limit:          defaultEventLimit,
	}

	var err error
	if f.EquipmentID, err = queryID(r, "equipment_id"); err != nil {
		fieldError(w, "equipment_id", "equipment_id: must be an integer")
		return
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.ParseUint(v, 10, 64); err != nil || f.Limit == 0 {
			fieldError(w, "limit", "limit: must be a positive integer")
			return
		}
	}

	events, err := store.ListEvents(r.Context(), h.DB, f)
	if err != nil {
		storeError(w, err, "list events")
		return
	}
	if events == nil {
		events = []model.EquipmentEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}
