package auth

import "testing"

func TestDepartmentScope_DoctorWithDepartment(t *testing.T) {
	id := &Identity{Roles: []string{RoleDoctor}, Department: "Cardiology"}
	scope := DepartmentScope(id)
	if !scope.Restricted() {
		t.Fatal("expected restricted scope for doctor with department")
	}
	if scope.Department != "Cardiology" {
		t.Errorf("unexpected department %q", scope.Department)
	}
}

func TestDepartmentScope_DoctorWithoutDepartment(t *testing.T) {
	id := &Identity{Roles: []string{RoleDoctor}}
	if DepartmentScope(id).Restricted() {
		t.Error("doctor without department must be unrestricted")
	}
}

func TestDepartmentScope_NonDoctor(t *testing.T) {
	id := &Identity{Roles: []string{RoleNurse}, Department: "Cardiology"}
	if DepartmentScope(id).Restricted() {
		t.Error("non-doctor roles must not be department scoped")
	}
}

func TestDepartmentScope_NilIdentity(t *testing.T) {
	if DepartmentScope(nil).Restricted() {
		t.Error("nil identity must yield pass-through scope")
	}
}

func TestScope_Allows(t *testing.T) {
	unrestricted := Scope{}
	if !unrestricted.Allows("Oncology") || !unrestricted.Allows("") {
		t.Error("unrestricted scope must allow everything")
	}

	scoped := Scope{Department: "Cardiology"}
	if !scoped.Allows("Cardiology") {
		t.Error("scope must allow its own department")
	}
	if scoped.Allows("Oncology") {
		t.Error("scope must exclude other departments")
	}
	if scoped.Allows("") {
		t.Error("records without a department are invisible to scoped identities")
	}
}
