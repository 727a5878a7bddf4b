package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/inventar/internal/model"
)

// EventFilter narrows ListEvents. Zero values do not filter.
type EventFilter struct {
	EquipmentID    int64
	EventType      string
	DocumentNumber string
	Limit          uint64
}

var eventSelect = sq.Select(
	"ev.id", "ev.equipment_id", "ev.event_type", "ev.from_employee_id", "ev.to_employee_id",
	"ev.old_status", "ev.new_status", "ev.document_number", "ev.comment",
	"ev.created_by", "ev.created_at",
	"e.name", "fe.full_name", "te.full_name",
).
	From("equipment_events ev").
	Join("equipment e ON e.id = ev.equipment_id").
	LeftJoin("employees fe ON fe.id = ev.from_employee_id").
	LeftJoin("employees te ON te.id = ev.to_employee_id")

// ListEvents returns equipment events matching the filter, newest first.
func ListEvents(ctx context.Context, q Querier, f EventFilter) ([]model.EquipmentEvent, error) {
	b := eventSelect
	if f.EquipmentID > 0 {
		b = b.Where(sq.Eq{"ev.equipment_id": f.EquipmentID})
	}
	if f.EventType != "" {
		b = b.Where(sq.Eq{"ev.event_type": f.EventType})
	}
	if f.DocumentNumber != "" {
		b = b.Where(sq.Eq{"ev.document_number": f.DocumentNumber})
	}
	b = b.OrderBy("ev.created_at DESC", "ev.id DESC")
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building event query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.EquipmentEvent
	for rows.Next() {
		var ev model.EquipmentEvent
		var fromName, toName sql.NullString
		if err := rows.Scan(&ev.ID, &ev.EquipmentID, &ev.EventType, &ev.FromEmployeeID, &ev.ToEmployeeID,
			&ev.OldStatus, &ev.NewStatus, &ev.DocumentNumber, &ev.Comment,
			&ev.CreatedBy, &ev.CreatedAt,
			&ev.EquipmentName, &fromName, &toName); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.FromEmployeeName = fromName.String
		ev.ToEmployeeName = toName.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetEquipmentHistory returns the events of one equipment item, newest first.
func GetEquipmentHistory(ctx context.Context, q Querier, equipmentID int64) ([]model.EquipmentEvent, error) {
	return ListEvents(ctx, q, EventFilter{EquipmentID: equipmentID})
}
