package domain

import "fmt"

// Department is the preparation/service owner of an order line.
type Department string

const (
	DepartmentCashier Department = "cassa"
	DepartmentGrill   Department = "brace"
	DepartmentKitchen Department = "cucina"
)

var Departments = []Department{DepartmentKitchen, DepartmentGrill, DepartmentCashier}

func ParseDepartment(s string) (Department, error) {
	d := Department(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown department %q", s)
	}
	return d, nil
}

func (d Department) Valid() bool {
	switch d {
	case DepartmentCashier, DepartmentGrill, DepartmentKitchen:
		return true
	}
	return false
}

func (d Department) Label() string {
	switch d {
	case DepartmentCashier:
		return "Cassa"
	case DepartmentGrill:
		return "Brace"
	case DepartmentKitchen:
		return "Cucina"
	}
	return string(d)
}

// Statuses lists the dish statuses a department works with.
func (d Department) Statuses() []DishStatus {
	switch d {
	case DepartmentKitchen:
		return []DishStatus{StatusInPreparation, StatusStarterServed, StatusFirstCourseServed, StatusMainCourseServed, StatusConcluded}
	case DepartmentGrill:
		return []DishStatus{StatusInPreparation, StatusConcluded}
	case DepartmentCashier:
		return []DishStatus{StatusConcluded}
	}
	return nil
}

// Accepts reports whether status belongs to the department's vocabulary.
// Cancelled is accepted for prepared lines only; cashier lines never move.
func (d Department) Accepts(s DishStatus) bool {
	if s == StatusCancelled {
		return d == DepartmentKitchen || d == DepartmentGrill
	}
	for _, v := range d.Statuses() {
		if v == s {
			return true
		}
	}
	return false
}
