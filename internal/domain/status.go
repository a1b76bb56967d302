package domain

import "fmt"

// DishStatus is the per-line service status.
type DishStatus string

const (
	StatusInPreparation     DishStatus = "in_preparazione"
	StatusStarterServed     DishStatus = "antipasto_servito"
	StatusFirstCourseServed DishStatus = "primo_servito"
	StatusMainCourseServed  DishStatus = "secondo_servito"
	StatusConcluded         DishStatus = "comanda_conclusa"
	StatusCancelled         DishStatus = "cancellato"
)

func ParseDishStatus(s string) (DishStatus, error) {
	st := DishStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown dish status %q", s)
	}
	return st, nil
}

func (s DishStatus) Valid() bool {
	switch s {
	case StatusInPreparation, StatusStarterServed, StatusFirstCourseServed,
		StatusMainCourseServed, StatusConcluded, StatusCancelled:
		return true
	}
	return false
}

func (s DishStatus) Label() string {
	switch s {
	case StatusInPreparation:
		return "In Preparazione"
	case StatusStarterServed:
		return "Antipasto Servito"
	case StatusFirstCourseServed:
		return "Primo Servito"
	case StatusMainCourseServed:
		return "Secondo Servito"
	case StatusConcluded:
		return "Concluso"
	case StatusCancelled:
		return "Cancellato"
	}
	return string(s)
}

func (s DishStatus) Color() string {
	switch s {
	case StatusInPreparation:
		return "warning"
	case StatusStarterServed, StatusFirstCourseServed, StatusMainCourseServed:
		return "info"
	case StatusConcluded:
		return "success"
	case StatusCancelled:
		return "error"
	}
	return "default"
}

// Finished reports whether the line has left preparation: any served
// sub-state or concluded. Cancelled is not finished.
func (s DishStatus) Finished() bool {
	switch s {
	case StatusStarterServed, StatusFirstCourseServed, StatusMainCourseServed, StatusConcluded:
		return true
	}
	return false
}

// ServedStatusFor is the kitchen status a category's lines move to when served.
// Categories without a dedicated sub-state go straight to concluded.
func ServedStatusFor(category string) DishStatus {
	switch category {
	case CategoryStarters:
		return StatusStarterServed
	case CategoryFirstCourses:
		return StatusFirstCourseServed
	case CategoryMainCourses:
		return StatusMainCourseServed
	}
	return StatusConcluded
}

// ServedTarget is the status a line of dept takes when marked served.
func ServedTarget(dept Department, category string) DishStatus {
	if dept == DepartmentKitchen {
		return ServedStatusFor(category)
	}
	return StatusConcluded
}

// Advance returns the next forward status for a line. It does not check
// whether the caller may perform the transition; terminal states map to
// themselves.
func Advance(current DishStatus, dept Department, category string) DishStatus {
	switch current {
	case StatusCancelled, StatusConcluded:
		return current
	}
	switch dept {
	case DepartmentKitchen:
		if current == StatusInPreparation {
			return ServedStatusFor(category)
		}
		return StatusConcluded
	case DepartmentGrill:
		return StatusConcluded
	}
	return current
}

// Revert undoes a served/concluded status back to in preparation. It backs
// the explicit "not served" toggle and is never applied implicitly. Cashier
// lines are born concluded and never move.
func Revert(current DishStatus, dept Department) DishStatus {
	if dept == DepartmentCashier {
		return current
	}
	if current.Finished() {
		return StatusInPreparation
	}
	return current
}

// Reached reports whether a line of the given department and category has
// reached its terminal (served) state.
func Reached(s DishStatus, dept Department, category string) bool {
	if s == StatusConcluded {
		return true
	}
	if dept == DepartmentKitchen {
		return s == ServedStatusFor(category)
	}
	return false
}
