package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

func TestCreateOrganizationValidates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		code  string
		org   string
		field string
	}{
		{"missing code", "", "Head Office", "code"},
		{"code too long", "ABCD", "Head Office", "code"},
		{"missing name", "HQ", "  ", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateOrganization(ctx, database, tt.code, tt.org, true)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestOrganizationCodeAndNameUnique(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateOrganization(ctx, database, "HQ", "Head Office", true); err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}

	_, err := CreateOrganization(ctx, database, "HQ", "Other", true)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate code: expected ErrConflict, got %v", err)
	}
	_, err = CreateOrganization(ctx, database, "OT", "Head Office", true)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate name: expected ErrConflict, got %v", err)
	}
}

func TestListOrganizationsActiveOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateOrganization(ctx, database, "HQ", "Head Office", true)
	CreateOrganization(ctx, database, "OLD", "Closed Branch", false)

	all, err := ListOrganizations(ctx, database, false)
	if err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 organizations, got %d", len(all))
	}

	active, _ := ListOrganizations(ctx, database, true)
	if len(active) != 1 || active[0].Code != "HQ" {
		t.Errorf("expected only HQ to be active, got %+v", active)
	}
}

func TestDeleteOrganizationInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := DeleteOrganization(ctx, f.db, f.org.ID)
	if !errors.Is(err, model.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}

	org, _ := GetOrganization(ctx, f.db, f.org.ID)
	if org == nil {
		t.Error("expected organization to remain after failed delete")
	}
}

func TestDeleteUnusedOrganization(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	org, _ := CreateOrganization(ctx, database, "TMP", "Temporary", false)
	if err := DeleteOrganization(ctx, database, org.ID); err != nil {
		t.Fatalf("DeleteOrganization: %v", err)
	}
	if err := DeleteOrganization(ctx, database, org.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDepartmentNameUniquePerOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := CreateDepartment(ctx, f.db, f.org.ID, "IT", true)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Same name in another organization is fine.
	if _, err := CreateDepartment(ctx, f.db, f.otherOrg.ID, "IT", true); err != nil {
		t.Errorf("CreateDepartment in other org: %v", err)
	}
}
