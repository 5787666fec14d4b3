package auth

// Scope is an attribute-derived query restriction layered on top of the
// role/permission checks. A restricted scope must be threaded into every
// list/read query the guarded resource performs; it narrows, never widens.
type Scope struct {
	Department string
}

// Restricted reports whether the scope carries a mandatory filter.
func (s Scope) Restricted() bool {
	return s.Department != ""
}

// Allows reports whether a record in the given department is visible
// under the scope. An unrestricted scope allows everything; a record
// without a department is visible only to unrestricted identities.
func (s Scope) Allows(department string) bool {
	if !s.Restricted() {
		return true
	}
	return department == s.Department
}

// DepartmentScope yields the mandatory department filter for doctors:
// an identity with the DOCTOR role and a non-empty department sees only
// records in that department. Everyone else gets a pass-through scope.
func DepartmentScope(identity *Identity) Scope {
	if identity == nil {
		return Scope{}
	}
	if identity.HasRole(RoleDoctor) && identity.Department != "" {
		return Scope{Department: identity.Department}
	}
	return Scope{}
}
