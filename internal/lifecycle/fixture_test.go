package lifecycle

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

type fixture struct {
	db       *sql.DB
	org      *model.Organization
	alice    *model.Employee
	bob      *model.Employee
	outsider *model.Employee
	monType  *model.EquipmentType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	f := &fixture{db: database}
	var err error
	f.org, err = store.CreateOrganization(ctx, database, "HQ", "Head Office", true)
	must(err)
	other, err := store.CreateOrganization(ctx, database, "BR", "Branch", true)
	must(err)
	dept, err := store.CreateDepartment(ctx, database, f.org.ID, "IT", true)
	must(err)
	otherDept, err := store.CreateDepartment(ctx, database, other.ID, "Sales", true)
	must(err)

	f.alice, err = store.CreateEmployee(ctx, database, &model.Employee{
		OrganizationID: f.org.ID, DepartmentID: dept.ID, FullName: "Alice Novak", Active: true,
	})
	must(err)
	f.bob, err = store.CreateEmployee(ctx, database, &model.Employee{
		OrganizationID: f.org.ID, DepartmentID: dept.ID, FullName: "Bob Kranjc", Active: true,
	})
	must(err)
	f.outsider, err = store.CreateEmployee(ctx, database, &model.Employee{
		OrganizationID: other.ID, DepartmentID: otherDept.ID, FullName: "Eve Zupan", Active: true,
	})
	must(err)

	f.monType, err = store.CreateEquipmentType(ctx, database, "Monitor", model.CategoryOther)
	must(err)
	return f
}

// equipment creates a monitor with the given status, held by holder (may be nil).
func (f *fixture) equipment(t *testing.T, name, status string, holder *model.Employee) *model.Equipment {
	t.Helper()
	e := &model.Equipment{
		OrganizationID: f.org.ID, EquipmentTypeID: f.monType.ID, Name: name, Status: status,
	}
	if holder != nil {
		id := holder.ID
		e.AssignedTo = &id
	}
	eq, err := store.CreateEquipment(context.Background(), f.db, e)
	if err != nil {
		t.Fatalf("CreateEquipment(%q): %v", name, err)
	}
	return eq
}

func (f *fixture) document(t *testing.T, docType, number string, to *model.Employee, lines ...*model.Equipment) *model.InventoryDocument {
	t.Helper()
	ctx := context.Background()
	d := &model.InventoryDocument{DocType: docType, OrganizationID: f.org.ID, Number: number}
	if to != nil {
		id := to.ID
		d.ToEmployeeID = &id
	}
	doc, err := store.CreateDocument(ctx, f.db, d)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	for _, eq := range lines {
		if _, err := store.AddDocumentLine(ctx, f.db, doc.ID, eq.ID); err != nil {
			t.Fatalf("AddDocumentLine: %v", err)
		}
	}
	return doc
}

func (f *fixture) reload(t *testing.T, id int64) *model.Equipment {
	t.Helper()
	eq, err := store.GetEquipment(context.Background(), f.db, id)
	if err != nil || eq == nil {
		t.Fatalf("GetEquipment(%d): %v %v", id, eq, err)
	}
	return eq
}

func (f *fixture) events(t *testing.T, filter store.EventFilter) []model.EquipmentEvent {
	t.Helper()
	events, err := store.ListEvents(context.Background(), f.db, filter)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func ptr(id int64) *int64 { return &id }
