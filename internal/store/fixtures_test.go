package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

// fixture is a small directory: two organizations, one department and one
// employee in each, and a type per category.
type fixture struct {
	db       *sql.DB
	org      *model.Organization
	otherOrg *model.Organization
	dept     *model.Department
	employee *model.Employee
	outsider *model.Employee
	pcType   *model.EquipmentType
	prnType  *model.EquipmentType
	monType  *model.EquipmentType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := &fixture{db: database}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	var err error
	f.org, err = CreateOrganization(ctx, database, "HQ", "Head Office", true)
	must(err)
	f.otherOrg, err = CreateOrganization(ctx, database, "BR", "Branch", true)
	must(err)

	f.dept, err = CreateDepartment(ctx, database, f.org.ID, "IT", true)
	must(err)
	otherDept, err := CreateDepartment(ctx, database, f.otherOrg.ID, "Sales", true)
	must(err)

	f.employee, err = CreateEmployee(ctx, database, &model.Employee{
		OrganizationID: f.org.ID, DepartmentID: f.dept.ID, FullName: "Alice Novak", Email: "alice@example.com", Active: true,
	})
	must(err)
	f.outsider, err = CreateEmployee(ctx, database, &model.Employee{
		OrganizationID: f.otherOrg.ID, DepartmentID: otherDept.ID, FullName: "Bob Horvat", Active: true,
	})
	must(err)

	f.pcType, err = CreateEquipmentType(ctx, database, "PC", model.CategoryComputer)
	must(err)
	f.prnType, err = CreateEquipmentType(ctx, database, "Printer", model.CategoryPrint)
	must(err)
	f.monType, err = CreateEquipmentType(ctx, database, "Monitor", model.CategoryOther)
	must(err)

	return f
}

func (f *fixture) monitor(t *testing.T, name string) *model.Equipment {
	t.Helper()
	eq, err := CreateEquipment(context.Background(), f.db, &model.Equipment{
		OrganizationID:  f.org.ID,
		EquipmentTypeID: f.monType.ID,
		Name:            name,
		InventoryNumber: "INV-" + name,
	})
	if err != nil {
		t.Fatalf("CreateEquipment(%q): %v", name, err)
	}
	return eq
}
