package model

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		capability string
		expected   bool
	}{
		{RoleAdmin, CapView, true},
		{RoleAdmin, CapEditDirectory, true},
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapEditDocuments, true},
		{RoleStorekeeper, CapView, true},
		{RoleStorekeeper, CapMoveEquipment, true},
		{RoleStorekeeper, CapEditDocuments, true},
		{RoleStorekeeper, CapEditDirectory, false},
		{RoleStorekeeper, CapManageUsers, false},
		{RoleViewer, CapView, true},
		{RoleViewer, CapMoveEquipment, false},
		{RoleViewer, CapEditDocuments, false},
		// Unknown roles and capabilities fail closed.
		{"unknown", CapView, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got := HasPermission(tt.role, tt.capability)
		if got != tt.expected {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.capability, got, tt.expected)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleStorekeeper, RoleViewer} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	if ValidRole("manager") {
		t.Error("ValidRole(\"manager\") = true, want false")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
