package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desideri-go/internal/app"
	"desideri-go/internal/domain"
	"desideri-go/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	lines  []events.LineStatusChanged
	orders []events.OrderChanged
}

func (p *recordingPublisher) PublishLineStatus(_ context.Context, ev events.LineStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, ev)
	return nil
}

func (p *recordingPublisher) PublishOrder(_ context.Context, ev events.OrderChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var testPasswords = map[domain.Role]string{
	domain.RoleCashier: "cassa123",
	domain.RoleGriller: "brace123",
	domain.RoleCook:    "cucina123",
	domain.RoleWaiter:  "cameriere123",
}

type testEnv struct {
	t       *testing.T
	h       http.Handler
	pub     *recordingPublisher
	menu    map[string]domain.MenuItem
	cookies map[domain.Role]*http.Cookie
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	a, err := app.New(context.Background(), app.Config{
		DBDriver:       "sqlite3",
		DBDSN:          filepath.Join(t.TempDir(), "handlers.db"),
		SessionHashKey: []byte(strings.Repeat("s", 32)),
		RolePasswords:  testPasswords,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	pub := &recordingPublisher{}
	a.SetPublisher(pub)

	items, err := a.Store().Q.ListMenu(context.Background(), false)
	require.NoError(t, err)
	menu := map[string]domain.MenuItem{}
	for _, m := range items {
		menu[m.Name] = m
	}
	return &testEnv{t: t, h: NewRouter(a), pub: pub, menu: menu, cookies: map[domain.Role]*http.Cookie{}}
}

func (e *testEnv) do(method, path string, body any, role domain.Role) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.AddCookie(e.login(role))
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(role domain.Role) *http.Cookie {
	e.t.Helper()
	if c, ok := e.cookies[role]; ok {
		return c
	}
	rec := e.do(http.MethodPost, "/login", map[string]string{"ruolo": string(role), "password": testPasswords[role]}, "")
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	c := rec.Result().Cookies()
	require.Len(e.t, c, 1)
	e.cookies[role] = c[0]
	return c[0]
}

type dish struct {
	name string
	qty  int
}

func (e *testEnv) createOrder(role domain.Role, dishes ...dish) testOrder {
	e.t.Helper()
	var lines []map[string]any
	for _, d := range dishes {
		m, ok := e.menu[d.name]
		require.True(e.t, ok, d.name)
		lines = append(lines, map[string]any{"menu_id": m.ID, "quantita": d.qty})
	}
	rec := e.do(http.MethodPost, "/orders", map[string]any{
		"cliente":        "Rossi",
		"nome_cameriere": "Luca",
		"tavolo":         5,
		"piatti":         lines,
	}, role)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeOrder(e.t, rec)
}

type testOrder struct {
	ID          int64                  `json:"id"`
	Phase       domain.OrderPhase      `json:"stato"`
	Total       decimal.Decimal        `json:"totale"`
	Lines       []domain.Line          `json:"dettagli_comanda"`
	Categories  []domain.CategoryGroup `json:"categorie"`
	Departments map[string]string      `json:"reparti"`
}

func (o testOrder) line(name string) domain.Line {
	for _, l := range o.Lines {
		if l.DishName == name {
			return l
		}
	}
	return domain.Line{}
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) testOrder {
	t.Helper()
	var o testOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o), rec.Body.String())
	return o
}

func categoryPath(id int64, category, action string) string {
	return "/orders/" + itoa(id) + "/categories/" + strings.ReplaceAll(category, " ", "%20") + "/" + action
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestHealthAndRoles(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", nil, "").Code)

	rec := e.do(http.MethodGet, "/roles", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var roles []roleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	assert.Len(t, roles, 4)
}

func TestLoginAndSession(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/login", map[string]string{"ruolo": "cuoca", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(http.MethodPost, "/login", map[string]string{"ruolo": "chef", "password": "cucina123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(http.MethodPost, "/login", map[string]string{"ruolo": "cuoca"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/session", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/orders", nil, "").Code)

	rec = e.do(http.MethodGet, "/session", nil, domain.RoleCook)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, domain.RoleCook, sess.Role)
	assert.Equal(t, domain.DepartmentKitchen, sess.Department)

	rec = e.do(http.MethodPost, "/logout", nil, domain.RoleCook)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestOrderLifecycle(t *testing.T) {
	e := newEnv(t)

	o := e.createOrder(domain.RoleWaiter,
		dish{"Tagliatelle al ragù", 2},
		dish{"Tagliata di manzo", 1},
		dish{"Acqua naturale 1L", 1},
	)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(38)), o.Total.String())
	assert.Equal(t, domain.PhasePrepared, o.Phase, "pre-served drinks count as finished")
	assert.Equal(t, domain.StatusConcluded, o.line("Acqua naturale 1L").Status)
	assert.Equal(t, domain.DepartmentGrill, o.line("Tagliata di manzo").Department)

	// cook moves the first courses forward
	rec := e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryFirstCourses, "advance"), nil, domain.RoleCook)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusFirstCourseServed, o.line("Tagliatelle al ragù").Status)

	// but may not touch the grill's category
	rec = e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryMainCourses, "advance"), nil, domain.RoleCook)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/orders/"+itoa(o.ID)+"/departments/brace/conclude", nil, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusConcluded, o.line("Tagliata di manzo").Status)
	assert.Equal(t, domain.PhaseServed, o.Phase)
	assert.Equal(t, string(domain.PhaseServed), o.Departments["brace"])

	// explicit correction: the circle toggle reverts served lines
	rec = e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryFirstCourses, "served"), map[string]bool{"servito": false}, domain.RoleCook)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusInPreparation, o.line("Tagliatelle al ragù").Status)

	rec = e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryFirstCourses, "served"), map[string]bool{"servito": true}, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusFirstCourseServed, o.line("Tagliatelle al ragù").Status)

	rec = e.do(http.MethodGet, "/orders/"+itoa(o.ID)+"/events", nil, domain.RoleWaiter)
	require.Equal(t, http.StatusOK, rec.Code)
	var evs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evs))
	assert.Len(t, evs, 3+4)

	e.pub.mu.Lock()
	defer e.pub.mu.Unlock()
	assert.Len(t, e.pub.lines, 4)
	require.NotEmpty(t, e.pub.orders)
	assert.Equal(t, events.TypeOrderCreated, e.pub.orders[0].Type)
	assert.Equal(t, events.TypeOrderUpdated, e.pub.orders[len(e.pub.orders)-1].Type)
}

func TestAdvanceWithoutChangesIsNoop(t *testing.T) {
	e := newEnv(t)
	o := e.createOrder(domain.RoleCashier, dish{"Coperto", 2})

	rec := e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryService, "advance"), nil, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusConcluded, decodeOrder(t, rec).line("Coperto").Status)

	rec = e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryDesserts, "advance"), nil, domain.RoleCashier)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, e.pub.lines)
}

func TestTrippaMovesMainCoursesToKitchen(t *testing.T) {
	e := newEnv(t)
	o := e.createOrder(domain.RoleWaiter, dish{"Tagliata di manzo", 1}, dish{"Trippa alla romana", 1})
	assert.Equal(t, domain.DepartmentKitchen, o.line("Tagliata di manzo").Department)
	require.Len(t, o.Categories, 1)
	assert.Equal(t, domain.DepartmentKitchen, o.Categories[0].Department)

	rec := e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryMainCourses, "advance"), nil, domain.RoleGriller)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryMainCourses, "advance"), nil, domain.RoleCook)
	require.Equal(t, http.StatusOK, rec.Code)
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusMainCourseServed, o.line("Trippa alla romana").Status)
	assert.Equal(t, domain.CategoryDone, o.Categories[0].Status)
}

func TestLineStatusGate(t *testing.T) {
	e := newEnv(t)
	o := e.createOrder(domain.RoleWaiter, dish{"Bruschetta al pomodoro", 1}, dish{"Salsiccia alla brace", 1})
	bruschetta := o.line("Bruschetta al pomodoro")
	salsiccia := o.line("Salsiccia alla brace")

	rec := e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{salsiccia.ID}, "stato": "primo_servito"}, domain.RoleCashier)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "not a grill status")

	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{salsiccia.ID}, "stato": "comanda_conclusa"}, domain.RoleCook)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{bruschetta.ID}, "stato": "cancellato"}, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusCancelled, decodeOrder(t, rec).line("Bruschetta al pomodoro").Status)

	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{bruschetta.ID}, "stato": "antipasto_servito"}, domain.RoleCook)
	assert.Equal(t, http.StatusForbidden, rec.Code, "cancelled lines are frozen")

	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{999}, "stato": "comanda_conclusa"}, domain.RoleCashier)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{}, "stato": "comanda_conclusa"}, domain.RoleCashier)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServedToggleLeavesCashierLines(t *testing.T) {
	e := newEnv(t)
	o := e.createOrder(domain.RoleWaiter, dish{"Acqua naturale 1L", 2}, dish{"Tagliatelle al ragù", 1})
	require.Equal(t, domain.StatusConcluded, o.line("Acqua naturale 1L").Status)

	rec := e.do(http.MethodPost, categoryPath(o.ID, domain.CategoryDrinks, "served"), map[string]bool{"servito": false}, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o = decodeOrder(t, rec)
	assert.Equal(t, domain.StatusConcluded, o.line("Acqua naturale 1L").Status)
	assert.Equal(t, domain.StatusInPreparation, o.line("Tagliatelle al ragù").Status)
	assert.Empty(t, e.pub.lines)

	rec = e.do(http.MethodGet, "/departments/cassa/pending", nil, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Pending
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 0, p.Total)

	// nor can a cashier line be cancelled or reopened one by one
	water := o.line("Acqua naturale 1L").ID
	for _, st := range []string{"cancellato", "in_preparazione"} {
		rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{water}, "stato": st}, domain.RoleCashier)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, st)
	}
}

func TestLineStatusRejectsUnknownIDs(t *testing.T) {
	e := newEnv(t)
	o := e.createOrder(domain.RoleWaiter, dish{"Salsiccia alla brace", 1})
	salsiccia := o.line("Salsiccia alla brace")

	rec := e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{salsiccia.ID, 999999}, "stato": "comanda_conclusa"}, domain.RoleGriller)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, e.pub.lines)

	rec = e.do(http.MethodGet, "/orders/"+itoa(o.ID), nil, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusInPreparation, decodeOrder(t, rec).line("Salsiccia alla brace").Status)

	// repeating a known id is not an unknown id
	rec = e.do(http.MethodPost, "/lines/status", map[string]any{"ids": []int64{salsiccia.ID, salsiccia.ID}, "stato": "comanda_conclusa"}, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusConcluded, decodeOrder(t, rec).line("Salsiccia alla brace").Status)
}

func TestLineStatusAcrossOrders(t *testing.T) {
	e := newEnv(t)
	a := e.createOrder(domain.RoleWaiter, dish{"Grigliata mista", 1})
	b := e.createOrder(domain.RoleWaiter, dish{"Salsiccia alla brace", 2})

	ids := []int64{a.line("Grigliata mista").ID, b.line("Salsiccia alla brace").ID}
	rec := e.do(http.MethodPost, "/lines/status", map[string]any{"ids": ids, "stato": "comanda_conclusa"}, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var lines []domain.Line
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, domain.StatusConcluded, l.Status)
	}
	assert.Len(t, e.pub.lines, 2)
}

func TestOrderPermissions(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/orders", map[string]any{"cliente": "x", "nome_cameriere": "y", "tavolo": 1, "piatti": []any{}}, domain.RoleCook)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/orders", map[string]any{"cliente": "x", "nome_cameriere": "y", "tavolo": 1, "piatti": []any{}}, domain.RoleWaiter)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	o := e.createOrder(domain.RoleCashier, dish{"Tiramisù", 1})

	rec = e.do(http.MethodPatch, "/orders/"+itoa(o.ID)+"/note", map[string]string{"note": " senza cacao "}, domain.RoleWaiter)
	require.Equal(t, http.StatusOK, rec.Code)
	var withNote map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &withNote))
	assert.Equal(t, "senza cacao", withNote["note"])

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/orders/"+itoa(o.ID), nil, domain.RoleWaiter).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/orders/"+itoa(o.ID), nil, domain.RoleCashier).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/orders/"+itoa(o.ID), nil, domain.RoleCashier).Code)
}

func TestUnavailableDishIsRejected(t *testing.T) {
	e := newEnv(t)
	m := e.menu["Panna cotta"]
	rec := e.do(http.MethodPost, "/menu/"+itoa(m.ID)+"/availability", map[string]bool{"disponibile": false}, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodPost, "/orders", map[string]any{
		"cliente": "Rossi", "nome_cameriere": "Luca", "tavolo": 2,
		"piatti": []map[string]any{{"menu_id": m.ID, "quantita": 1}},
	}, domain.RoleWaiter)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDepartmentBoard(t *testing.T) {
	e := newEnv(t)
	e.createOrder(domain.RoleWaiter, dish{"Tagliata di manzo", 1}, dish{"Salsiccia alla brace", 3}, dish{"Patate al forno", 1})
	e.createOrder(domain.RoleWaiter, dish{"Tiramisù", 2})

	rec := e.do(http.MethodGet, "/departments/brace/orders", nil, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		CanEdit bool           `json:"modificabile"`
		Active  []testOrder    `json:"attive"`
		Pending domain.Pending `json:"da_servire"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.True(t, board.CanEdit)
	require.Len(t, board.Active, 1)
	assert.Len(t, board.Active[0].Lines, 2, "only grill lines")
	assert.Equal(t, 4, board.Pending.Total)

	rec = e.do(http.MethodGet, "/departments/cucina/pending", nil, domain.RoleGriller)
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Pending
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.ByCategory[domain.CategoryDesserts])

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/departments/bar/orders", nil, domain.RoleGriller).Code)
}

func TestOrdersByWaiter(t *testing.T) {
	e := newEnv(t)
	e.createOrder(domain.RoleWaiter, dish{"Tiramisù", 1})

	rec := e.do(http.MethodGet, "/orders?waiter=Luca", nil, domain.RoleWaiter)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Active []testOrder `json:"attive"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Active, 1)

	rec = e.do(http.MethodGet, "/orders?waiter=Giulia", nil, domain.RoleWaiter)
	require.Equal(t, http.StatusOK, rec.Code)
	resp.Active = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Active)
}

func TestMenuManagement(t *testing.T) {
	e := newEnv(t)
	item := map[string]any{"nome": "Polenta", "categoria": "Contorni", "prezzo": "5.50"}

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/menu", item, domain.RoleWaiter).Code)

	rec := e.do(http.MethodPost, "/menu", item, domain.RoleCashier)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Available)

	rec = e.do(http.MethodPost, "/menu", map[string]any{"nome": "Gratis", "categoria": "Contorni", "prezzo": "0"}, domain.RoleCashier)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	o := e.createOrder(domain.RoleWaiter, dish{"Tiramisù", 1})
	require.NotZero(t, o.ID)
	rec = e.do(http.MethodDelete, "/menu/"+itoa(e.menu["Tiramisù"].ID), nil, domain.RoleCashier)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/menu/"+itoa(created.ID), nil, domain.RoleCashier).Code)

	rec = e.do(http.MethodGet, "/menu", nil, domain.RoleWaiter)
	require.Equal(t, http.StatusOK, rec.Code)
	var sections []menuSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.NotEmpty(t, sections)
	assert.Equal(t, domain.CategoryStarters, sections[0].Category)
	assert.Equal(t, domain.DepartmentGrill, sectionDept(sections, domain.CategoryMainCourses))
}

func sectionDept(sections []menuSection, category string) domain.Department {
	for _, s := range sections {
		if s.Category == category {
			return s.Department
		}
	}
	return ""
}

func TestReservations(t *testing.T) {
	e := newEnv(t)
	res := map[string]any{
		"giorno": "2026-07-10", "turno": 1, "zona": "pergola", "numero_tavolo": 1,
		"nome_cliente": "Bianchi", "numero_persone": 6, "recapito_telefonico": "3331234567",
	}
	rec := e.do(http.MethodPost, "/reservations", res, domain.RoleWaiter)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	res["nome_cliente"] = "Verdi"
	res["numero_persone"] = 5
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/reservations", res, domain.RoleWaiter).Code)

	res["zona"] = "giardino"
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, "/reservations", res, domain.RoleWaiter).Code)

	rec = e.do(http.MethodPatch, "/reservations/"+itoa(created.ID), map[string]any{"numero_persone": 10}, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/reservations/tables?day=2026-07-10&shift=1", nil, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)
	var tables tablesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	assert.Len(t, tables.Tables, 14)
	for _, tb := range tables.Tables {
		if tb.Zone == "pergola" && tb.Table == 1 {
			assert.Equal(t, 10, tb.Occupied)
			assert.Equal(t, 0, tb.Available)
		}
	}

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/reservations/tables?day=2026-07-10", nil, domain.RoleCashier).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/reservations/"+itoa(created.ID), nil, domain.RoleCashier).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/reservations/"+itoa(created.ID), nil, domain.RoleCashier).Code)
}

func TestAdminSeedIsCashierOnly(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/admin/seed", nil, domain.RoleCook).Code)

	rec := e.do(http.MethodPost, "/admin/seed", nil, domain.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "sqlite3", stats.Dialect)
	assert.Contains(t, stats.Counts, "menu=19")
}
