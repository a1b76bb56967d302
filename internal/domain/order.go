package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder    = errors.New("invalid order")
	ErrMenuUnavailable = errors.New("menu item not available")
)

type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Category    string          `json:"categoria"`
	Price       decimal.Decimal `json:"prezzo"`
	Available   bool            `json:"disponibile"`
	Description string          `json:"descrizione,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Line is one ordered dish ("dettaglio").
type Line struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"comanda_id"`
	MenuItemID int64           `json:"menu_id"`
	DishName   string          `json:"nome"`
	Category   string          `json:"categoria"`
	Quantity   int             `json:"quantita"`
	UnitPrice  decimal.Decimal `json:"prezzo_unitario"`
	Department Department      `json:"reparto"`
	Status     DishStatus      `json:"stato"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Reached reports whether the line reached its department's terminal state.
func (l Line) Reached() bool { return Reached(l.Status, l.Department, l.Category) }

// Order is a customer's ticket ("comanda"). Its aggregate status is never
// stored; see Phase.
type Order struct {
	ID        int64           `json:"id"`
	Customer  string          `json:"cliente"`
	Waiter    string          `json:"nome_cameriere"`
	Table     int             `json:"tavolo"`
	OrderedAt time.Time       `json:"data_ordine"`
	Total     decimal.Decimal `json:"totale"`
	Note      string          `json:"note,omitempty"`
	Lines     []Line          `json:"dettagli_comanda"`
}

// LinesFor returns the order's lines stamped with dept.
func (o Order) LinesFor(dept Department) []Line {
	var out []Line
	for _, l := range o.Lines {
		if l.Department == dept {
			out = append(out, l)
		}
	}
	return out
}

// LineRequest is one dish on the point-of-sale form.
type LineRequest struct {
	MenuItemID int64            `json:"menu_id" validate:"required,gt=0"`
	Quantity   int              `json:"quantita" validate:"required,gt=0"`
	UnitPrice  *decimal.Decimal `json:"prezzo_unitario"`
}

type OrderRequest struct {
	Customer string        `json:"cliente" validate:"required"`
	Waiter   string        `json:"nome_cameriere" validate:"required"`
	Table    int           `json:"tavolo" validate:"required,gte=1"`
	Note     string        `json:"note"`
	Lines    []LineRequest `json:"piatti" validate:"required,min=1,dive"`
}

// NewOrder builds an unsaved order from the form. Each line is routed with
// the dish names of its category siblings, priced from the request (falling
// back to the menu price when the request carries none; zero is a valid
// complimentary price, negative is rejected) and stamped with its initial
// status. The total is fixed here and never recomputed.
func NewOrder(req OrderRequest, menu map[int64]MenuItem, router *Router, now time.Time) (*Order, error) {
	req.Customer = strings.TrimSpace(req.Customer)
	req.Waiter = strings.TrimSpace(req.Waiter)
	if req.Customer == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	}
	if req.Waiter == "" {
		return nil, fmt.Errorf("%w: waiter name is required", ErrInvalidOrder)
	}
	if req.Table < 1 {
		return nil, fmt.Errorf("%w: table number must be at least 1", ErrInvalidOrder)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one dish is required", ErrInvalidOrder)
	}
	if router == nil {
		router = DefaultRouter()
	}

	siblings := map[string][]string{}
	for _, lr := range req.Lines {
		item, ok := menu[lr.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: menu item %d", ErrMenuUnavailable, lr.MenuItemID)
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: %s", ErrMenuUnavailable, item.Name)
		}
		if lr.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrInvalidOrder, item.Name)
		}
		if lr.UnitPrice != nil && lr.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: negative price for %s", ErrInvalidOrder, item.Name)
		}
		siblings[item.Category] = append(siblings[item.Category], item.Name)
	}

	o := &Order{
		Customer:  req.Customer,
		Waiter:    req.Waiter,
		Table:     req.Table,
		OrderedAt: now,
		Note:      strings.TrimSpace(req.Note),
	}
	for _, lr := range req.Lines {
		item := menu[lr.MenuItemID]
		route := router.Route(item.Category, siblings[item.Category])
		status := StatusInPreparation
		if route.Served {
			status = StatusConcluded
		}
		price := item.Price
		if lr.UnitPrice != nil {
			price = *lr.UnitPrice
		}
		o.Lines = append(o.Lines, Line{
			MenuItemID: item.ID,
			DishName:   item.Name,
			Category:   item.Category,
			Quantity:   lr.Quantity,
			UnitPrice:  price,
			Department: route.Department,
			Status:     status,
			CreatedAt:  now,
		})
	}
	o.Total = Total(o.Lines)
	return o, nil
}

// Total sums quantity × unit price.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}
