package domain

import (
	"sort"
	"strings"
)

const (
	CategoryStarters     = "Antipasti"
	CategoryFirstCourses = "Primi Piatti"
	CategoryMainCourses  = "Secondi Piatti"
	CategorySides        = "Contorni"
	CategoryDesserts     = "Dolci"
	CategoryDrinks       = "Bevande"
	CategoryService      = "Servizio"

	// CategoryOther groups lines whose menu item carries no category.
	CategoryOther = "Altro"
)

var categoryOrder = []string{
	CategoryStarters,
	CategoryFirstCourses,
	CategoryMainCourses,
	CategorySides,
	CategoryDesserts,
	CategoryDrinks,
	CategoryService,
}

func categoryIndex(c string) int {
	for i, v := range categoryOrder {
		if v == c {
			return i
		}
	}
	return -1
}

// SortCategories orders categories by menu position; unknown ones follow
// alphabetically. The input slice is sorted in place and returned.
func SortCategories(cats []string) []string {
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := categoryIndex(cats[i]), categoryIndex(cats[j])
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		}
		return strings.Compare(cats[i], cats[j]) < 0
	})
	return cats
}

// Route is where a line goes at creation time.
type Route struct {
	Department Department
	// Served lines need no preparation and start concluded.
	Served bool
}

// Exception reroutes a whole category group when any dish name in it
// contains Keyword (case-insensitive).
type Exception struct {
	Keyword    string
	Department Department
}

// Router maps menu categories to departments.
type Router struct {
	Categories map[string]Department
	PreServed  map[string]bool
	Exceptions []Exception
	Fallback   Department
}

func DefaultRouter() *Router {
	return &Router{
		Categories: map[string]Department{
			CategoryStarters:     DepartmentKitchen,
			CategoryFirstCourses: DepartmentKitchen,
			CategoryMainCourses:  DepartmentGrill,
			CategorySides:        DepartmentKitchen,
			CategoryDesserts:     DepartmentKitchen,
			CategoryDrinks:       DepartmentCashier,
			CategoryService:      DepartmentCashier,
		},
		PreServed: map[string]bool{
			CategoryDrinks:  true,
			CategoryService: true,
		},
		Exceptions: []Exception{{Keyword: "trippa", Department: DepartmentKitchen}},
		Fallback:   DepartmentKitchen,
	}
}

// Department returns the category's department, considering the dish names
// of every line sharing that category in the same order. If any of them
// matches an exception, the whole category follows the exception.
func (r *Router) Department(category string, names ...string) Department {
	for _, ex := range r.Exceptions {
		kw := strings.ToLower(ex.Keyword)
		if kw == "" {
			continue
		}
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), kw) {
				return ex.Department
			}
		}
	}
	if d, ok := r.Categories[category]; ok {
		return d
	}
	if r.Fallback.Valid() {
		return r.Fallback
	}
	return DepartmentKitchen
}

// Route stamps a new line. siblings are the dish names of all lines in the
// order with the same category, the line itself included.
func (r *Router) Route(category string, siblings []string) Route {
	return Route{
		Department: r.Department(category, siblings...),
		Served:     r.PreServed[category],
	}
}
