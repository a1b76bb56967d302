package domain

import "fmt"

type Role string

const (
	RoleCashier Role = "cassiere"
	RoleGriller Role = "bracerista"
	RoleCook    Role = "cuoca"
	RoleWaiter  Role = "cameriere"
)

var Roles = []Role{RoleCashier, RoleWaiter, RoleCook, RoleGriller}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleCashier, RoleGriller, RoleCook, RoleWaiter:
		return true
	}
	return false
}

func (r Role) Label() string {
	switch r {
	case RoleCashier:
		return "Cassiere"
	case RoleGriller:
		return "Bracerista"
	case RoleCook:
		return "Cuoca"
	case RoleWaiter:
		return "Cameriere"
	}
	return string(r)
}

// Department returns the department the role is bound to for editing.
// Waiters are not bound to any department.
func (r Role) Department() (Department, bool) {
	switch r {
	case RoleCashier:
		return DepartmentCashier, true
	case RoleGriller:
		return DepartmentGrill, true
	case RoleCook:
		return DepartmentKitchen, true
	}
	return "", false
}

// Home is the dashboard path the role lands on after login.
func (r Role) Home() string {
	switch r {
	case RoleCashier:
		return "/cassa"
	case RoleGriller:
		return "/brace"
	case RoleCook:
		return "/cucina"
	case RoleWaiter:
		return "/camerieri"
	}
	return "/"
}

// CanView is unrestricted: every role may look at every department.
// TODO: confirm with the restaurant whether per-role visibility should come back.
func CanView(_ Role, _ Department) bool { return true }

// CanEdit reports whether role may change the status of lines owned by dept.
// The cashier may edit every department.
func CanEdit(role Role, dept Department) bool {
	if !dept.Valid() {
		return false
	}
	if role == RoleCashier {
		return true
	}
	bound, ok := role.Department()
	return ok && bound == dept
}

// Allow gates a single line: the role must be able to edit its department
// and the line must not be cancelled.
func Allow(role Role, l Line) bool {
	return l.Status != StatusCancelled && CanEdit(role, l.Department)
}

// CanCreateOrders reports whether role may use the point-of-sale form.
func CanCreateOrders(role Role) bool {
	return role == RoleCashier || role == RoleWaiter
}
