package domain

// CategoryStatus is the roll-up of one category's lines.
type CategoryStatus string

const (
	CategoryPending CategoryStatus = "in_preparazione"
	CategoryPartial CategoryStatus = "parzialmente_servito"
	CategoryDone    CategoryStatus = "tutto_servito"
)

func (s CategoryStatus) Label() string {
	switch s {
	case CategoryPending:
		return "In Preparazione"
	case CategoryPartial:
		return "Parzialmente Servito"
	case CategoryDone:
		return "Tutto Servito"
	}
	return string(s)
}

// Color is the category circle colour.
func (s CategoryStatus) Color() string {
	switch s {
	case CategoryPending:
		return "error"
	case CategoryPartial:
		return "warning"
	case CategoryDone:
		return "success"
	}
	return "default"
}

// OrderPhase is the derived lifecycle tag of an order or department.
type OrderPhase string

const (
	PhaseNew       OrderPhase = "nuovo"
	PhaseReceived  OrderPhase = "comanda_ricevuta"
	PhasePrepared  OrderPhase = "comanda_preparata"
	PhaseConcluded OrderPhase = "comanda_conclusa"
	PhaseServed    OrderPhase = "servito"
	PhaseCancelled OrderPhase = "cancellato"
)

func (p OrderPhase) Label() string {
	switch p {
	case PhaseNew:
		return "Nuovo"
	case PhaseReceived:
		return "Comanda Ricevuta"
	case PhasePrepared:
		return "Comanda Preparata"
	case PhaseConcluded:
		return "Comanda Conclusa"
	case PhaseServed:
		return "Servito"
	case PhaseCancelled:
		return "Cancellato"
	}
	return string(p)
}

func (p OrderPhase) Color() string {
	switch p {
	case PhaseNew:
		return "info"
	case PhaseReceived:
		return "warning"
	case PhasePrepared:
		return "success"
	case PhaseConcluded:
		return "primary"
	case PhaseServed:
		return "default"
	case PhaseCancelled:
		return "error"
	}
	return "default"
}

// CategoryStatusOf folds the lines of one category. Cancelled lines are
// ignored; a category with no other lines stays pending.
func CategoryStatusOf(lines []Line) CategoryStatus {
	active, reached := 0, 0
	for _, l := range lines {
		if l.Status == StatusCancelled {
			continue
		}
		active++
		if l.Reached() {
			reached++
		}
	}
	switch {
	case active == 0 || reached == 0:
		return CategoryPending
	case reached == active:
		return CategoryDone
	}
	return CategoryPartial
}

// Phase derives the lifecycle tag of a set of lines. Rules are checked in
// order and the first match wins.
func Phase(lines []Line) OrderPhase {
	if len(lines) == 0 {
		return PhaseNew
	}
	var active []Line
	for _, l := range lines {
		if l.Status != StatusCancelled {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		return PhaseCancelled
	}

	finished, preparing := 0, 0
	for _, l := range active {
		if l.Status.Finished() {
			finished++
		}
		if l.Status == StatusInPreparation {
			preparing++
		}
	}
	switch {
	case finished == len(active):
		return PhaseServed
	case finished > 0:
		return PhasePrepared
	case preparing == len(active):
		return PhaseReceived
	}
	return PhaseNew
}

func OrderPhaseOf(o Order) OrderPhase { return Phase(o.Lines) }

func DepartmentPhase(o Order, dept Department) OrderPhase { return Phase(o.LinesFor(dept)) }

// CategoryGroup is the display grouping of an order's lines by category.
type CategoryGroup struct {
	Category string         `json:"categoria"`
	Lines    []Line         `json:"dettagli"`
	Status   CategoryStatus `json:"stato"`
	Served   int            `json:"serviti"`
	Count    int            `json:"totale"`
	// Department is re-derived from the current lines and may differ from
	// the department stamped on them at creation.
	Department Department `json:"reparto"`
}

// GroupByCategory groups lines by category in menu order.
func GroupByCategory(lines []Line, router *Router) []CategoryGroup {
	if router == nil {
		router = DefaultRouter()
	}
	byCat := map[string][]Line{}
	var cats []string
	for _, l := range lines {
		c := l.Category
		if c == "" {
			c = CategoryOther
		}
		if _, ok := byCat[c]; !ok {
			cats = append(cats, c)
		}
		byCat[c] = append(byCat[c], l)
	}
	SortCategories(cats)

	out := make([]CategoryGroup, 0, len(cats))
	for _, c := range cats {
		ls := byCat[c]
		g := CategoryGroup{
			Category:   c,
			Lines:      ls,
			Status:     CategoryStatusOf(ls),
			Count:      len(ls),
			Department: EffectiveDepartment(c, ls, router),
		}
		for _, l := range ls {
			if l.Reached() {
				g.Served++
			}
		}
		out = append(out, g)
	}
	return out
}

// EffectiveDepartment re-derives a category's department from the lines
// currently in it.
func EffectiveDepartment(category string, lines []Line, router *Router) Department {
	if router == nil {
		router = DefaultRouter()
	}
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.DishName)
	}
	return router.Department(category, names...)
}

// Concluded reports whether every line is cancelled or reached. An empty
// set is concluded.
func Concluded(lines []Line) bool {
	for _, l := range lines {
		if l.Status != StatusCancelled && !l.Reached() {
			return false
		}
	}
	return true
}

// Split separates orders into active and concluded ones.
type Split struct {
	Active    []Order `json:"attive"`
	Concluded []Order `json:"concluse"`
}

// SplitByDepartment keeps only dept's lines of each order, drops orders
// without any and splits the rest.
func SplitByDepartment(orders []Order, dept Department) Split {
	var s Split
	for _, o := range orders {
		lines := o.LinesFor(dept)
		if len(lines) == 0 {
			continue
		}
		o.Lines = lines
		if Concluded(lines) {
			s.Concluded = append(s.Concluded, o)
		} else {
			s.Active = append(s.Active, o)
		}
	}
	return s
}

// SplitComplete splits whole orders, as seen by the cashier and waiters.
func SplitComplete(orders []Order) Split {
	var s Split
	for _, o := range orders {
		if Concluded(o.Lines) {
			s.Concluded = append(s.Concluded, o)
		} else {
			s.Active = append(s.Active, o)
		}
	}
	return s
}

// Pending counts dishes still to be served, by quantity.
type Pending struct {
	Department Department     `json:"reparto"`
	ByCategory map[string]int `json:"per_categoria"`
	Total      int            `json:"totale"`
}

// PendingDishes sums the quantity of dept's lines that are neither
// cancelled nor reached.
func PendingDishes(orders []Order, dept Department) Pending {
	p := Pending{Department: dept, ByCategory: map[string]int{}}
	for _, o := range orders {
		for _, l := range o.Lines {
			if l.Department != dept || l.Status == StatusCancelled || l.Reached() {
				continue
			}
			c := l.Category
			if c == "" {
				c = CategoryOther
			}
			p.ByCategory[c] += l.Quantity
			p.Total += l.Quantity
		}
	}
	return p
}
