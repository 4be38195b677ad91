package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleFaculty, true},
		{RoleAdmin, RoleStudent, true},
		{RoleFaculty, RoleAdmin, false},
		{RoleFaculty, RoleFaculty, true},
		{RoleFaculty, RoleStudent, true},
		{RoleStudent, RoleAdmin, false},
		{RoleStudent, RoleFaculty, false},
		{RoleStudent, RoleStudent, true},
		// Unknown roles fail-closed.
		{"unknown", RoleStudent, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleStudent, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidReportStatus(t *testing.T) {
	valid := []string{ItemStatusLost, ItemStatusFound}
	for _, s := range valid {
		if !ValidReportStatus(s) {
			t.Errorf("expected %q to be a valid report status", s)
		}
	}

	invalid := []string{ItemStatusClaimPending, ItemStatusResolved, "", "stolen"}
	for _, s := range invalid {
		if ValidReportStatus(s) {
			t.Errorf("expected %q to be rejected as a report status", s)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleFaculty, RoleStudent} {
		if !ValidRole(r) {
			t.Errorf("expected %q to be a valid role", r)
		}
	}
	for _, r := range []string{"", "superadmin", "Student"} {
		if ValidRole(r) {
			t.Errorf("expected %q to be rejected as a role", r)
		}
	}
}
