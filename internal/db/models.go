package db

import (
	"time"

	"github.com/shopspring/decimal"

	"desideri-go/internal/domain"
)

// LineEvent is one audit row written by ApplyLineTransitions.
type LineEvent struct {
	ID         int64             `json:"id"`
	LineID     int64             `json:"dettaglio_id"`
	OrderID    int64             `json:"comanda_id"`
	FromStatus domain.DishStatus `json:"da"`
	ToStatus   domain.DishStatus `json:"a"`
	ChangedBy  domain.Role       `json:"ruolo"`
	DishName   string            `json:"nome"`
	CreatedAt  time.Time         `json:"created_at"`
}

// LineTransitions maps a target status to the ids of the lines moving to it.
type LineTransitions map[domain.DishStatus][]int64

type OrderFilter struct {
	Waiter     string
	Department domain.Department
}

type ReservationFilter struct {
	Day   string
	Shift int
	Zone  string
}

/* ---------- parameter structs ---------- */

type CreateMenuItemParams struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Available   bool
	Description string
}

type UpdateMenuItemParams struct {
	ID          int64
	Name        string
	Category    string
	Price       decimal.Decimal
	Available   bool
	Description string
}
