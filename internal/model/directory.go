package model

import "time"

// Organization is a legal entity owning departments, employees and equipment.
type Organization struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// OrganizationCodeMaxLen is the maximum length of an organization code.
const OrganizationCodeMaxLen = 3

// Department belongs to exactly one organization.
type Department struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
}

// Employee can hold equipment and be a party in documents and events.
type Employee struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	DepartmentID   int64  `json:"department_id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Active         bool   `json:"active"`

	// Joined fields (not always populated).
	OrganizationCode string `json:"organization_code,omitempty"`
	DepartmentName   string `json:"department_name,omitempty"`
}
