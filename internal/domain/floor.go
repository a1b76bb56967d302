package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnknownTable       = errors.New("unknown table")
	ErrTableFull          = errors.New("table capacity exceeded")
	ErrInvalidReservation = errors.New("invalid reservation")
)

const DayLayout = "2006-01-02"

// Shifts are the dinner seatings, numbered from 1.
var Shifts = []int{1, 2, 3}

func ShiftLabel(shift int) string { return fmt.Sprintf("%d° Turno", shift) }

// Zone is an area of the restaurant; Capacities holds the seats of each
// table, table numbers being 1-based positions.
type Zone struct {
	Name       string `yaml:"name" json:"zona"`
	Capacities []int  `yaml:"capacities" json:"capienze"`
}

type FloorPlan struct {
	Zones []Zone `yaml:"zones" json:"zone"`
}

func DefaultFloorPlan() FloorPlan {
	return FloorPlan{Zones: []Zone{
		{Name: "cantinella", Capacities: []int{10, 10, 10}},
		{Name: "cantina", Capacities: []int{10, 10, 10}},
		{Name: "pergola", Capacities: []int{10, 10, 10}},
		{Name: "arco", Capacities: []int{10, 10, 10}},
		{Name: "piazzetta", Capacities: []int{10, 10}},
	}}
}

func (f FloorPlan) zone(name string) (Zone, bool) {
	for _, z := range f.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// Capacity returns the seats of a table, 0 when it does not exist.
func (f FloorPlan) Capacity(zone string, table int) int {
	z, ok := f.zone(zone)
	if !ok || table < 1 || table > len(z.Capacities) {
		return 0
	}
	return z.Capacities[table-1]
}

type Reservation struct {
	ID       int64     `json:"id"`
	Day      string    `json:"giorno" validate:"required,datetime=2006-01-02"`
	Shift    int       `json:"turno" validate:"required,gte=1,lte=3"`
	Zone     string    `json:"zona" validate:"required"`
	Table    int       `json:"numero_tavolo" validate:"required,gte=1"`
	Customer string    `json:"nome_cliente" validate:"required"`
	People   int       `json:"numero_persone" validate:"required,gte=1"`
	Phone    string    `json:"recapito_telefonico" validate:"required"`
	Note     string    `json:"note,omitempty"`
	Created  time.Time `json:"created_at"`
	Updated  time.Time `json:"updated_at"`
}

// TableInfo is the occupancy of one table in one shift.
type TableInfo struct {
	Zone         string        `json:"zona"`
	Table        int           `json:"numero_tavolo"`
	Capacity     int           `json:"capienza"`
	Occupied     int           `json:"posti_occupati"`
	Available    int           `json:"posti_disponibili"`
	Reservations []Reservation `json:"prenotazioni"`
}

// Tables lays out every table of the plan with the given reservations
// (already filtered to one day and shift).
func (f FloorPlan) Tables(reservations []Reservation) []TableInfo {
	var out []TableInfo
	idx := map[string]int{}
	for _, z := range f.Zones {
		for i, c := range z.Capacities {
			idx[fmt.Sprintf("%s/%d", z.Name, i+1)] = len(out)
			out = append(out, TableInfo{Zone: z.Name, Table: i + 1, Capacity: c, Available: c})
		}
	}
	for _, r := range reservations {
		i, ok := idx[fmt.Sprintf("%s/%d", r.Zone, r.Table)]
		if !ok {
			continue
		}
		t := &out[i]
		t.Reservations = append(t.Reservations, r)
		t.Occupied += r.People
		t.Available = t.Capacity - t.Occupied
		if t.Available < 0 {
			t.Available = 0
		}
	}
	return out
}

// CheckReservation validates r against the plan and the reservations
// already booked for the same day and shift. existing may include r itself
// (on update); it is skipped by ID.
func (f FloorPlan) CheckReservation(r Reservation, existing []Reservation) error {
	r.Customer = strings.TrimSpace(r.Customer)
	if r.Customer == "" || r.People < 1 {
		return fmt.Errorf("%w: customer and party size are required", ErrInvalidReservation)
	}
	if _, err := time.Parse(DayLayout, r.Day); err != nil {
		return fmt.Errorf("%w: day %q", ErrInvalidReservation, r.Day)
	}
	if !validShift(r.Shift) {
		return fmt.Errorf("%w: shift %d", ErrInvalidReservation, r.Shift)
	}
	capacity := f.Capacity(r.Zone, r.Table)
	if capacity == 0 {
		return fmt.Errorf("%w: %s/%d", ErrUnknownTable, r.Zone, r.Table)
	}
	seats := r.People
	for _, e := range existing {
		if e.ID == r.ID && r.ID != 0 {
			continue
		}
		if e.Day == r.Day && e.Shift == r.Shift && e.Zone == r.Zone && e.Table == r.Table {
			seats += e.People
		}
	}
	if seats > capacity {
		return fmt.Errorf("%w: %s/%d has %d seats", ErrTableFull, r.Zone, r.Table, capacity)
	}
	return nil
}

func validShift(s int) bool {
	for _, v := range Shifts {
		if v == s {
			return true
		}
	}
	return false
}

// ZoneNames returns the zone names sorted by plan order.
func (f FloorPlan) ZoneNames() []string {
	names := make([]string, 0, len(f.Zones))
	for _, z := range f.Zones {
		names = append(names, z.Name)
	}
	return names
}

// SortReservations orders by zone (plan order) then table.
func (f FloorPlan) SortReservations(rs []Reservation) {
	pos := map[string]int{}
	for i, z := range f.Zones {
		pos[z.Name] = i
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Zone != rs[j].Zone {
			return pos[rs[i].Zone] < pos[rs[j].Zone]
		}
		return rs[i].Table < rs[j].Table
	})
}
