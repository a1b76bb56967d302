package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(RoleCook, DepartmentKitchen))
	assert.False(t, CanEdit(RoleCook, DepartmentGrill))
	assert.True(t, CanEdit(RoleGriller, DepartmentGrill))
	assert.False(t, CanEdit(RoleGriller, DepartmentCashier))
	assert.True(t, CanEdit(RoleCashier, DepartmentGrill))
	assert.True(t, CanEdit(RoleCashier, DepartmentKitchen))
	assert.False(t, CanEdit(RoleWaiter, DepartmentKitchen))
	assert.False(t, CanEdit(RoleCashier, Department("bar")))
}

func TestCanViewIsUnrestricted(t *testing.T) {
	for _, r := range Roles {
		for _, d := range Departments {
			assert.True(t, CanView(r, d), "%s/%s", r, d)
		}
	}
}

func TestAllowRejectsCancelledLines(t *testing.T) {
	l := Line{Department: DepartmentKitchen, Status: StatusInPreparation}
	assert.True(t, Allow(RoleCook, l))

	l.Status = StatusCancelled
	assert.False(t, Allow(RoleCook, l))
	assert.False(t, Allow(RoleCashier, l))
}

func TestRoleBinding(t *testing.T) {
	d, ok := RoleGriller.Department()
	assert.True(t, ok)
	assert.Equal(t, DepartmentGrill, d)

	_, ok = RoleWaiter.Department()
	assert.False(t, ok)
	assert.True(t, CanCreateOrders(RoleWaiter))
	assert.False(t, CanCreateOrders(RoleCook))
}
