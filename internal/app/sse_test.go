package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desideri-go/internal/domain"
)

func TestTopicsFor(t *testing.T) {
	assert.Equal(t, []string{"orders:global", "department:cucina"}, TopicsFor(domain.RoleCook))
	assert.Equal(t, []string{"orders:global"}, TopicsFor(domain.RoleWaiter))
}

func TestBroadcastOrderReachesDepartments(t *testing.T) {
	h := NewSSEHub(nil)
	grill, cancelGrill := h.Subscribe(TopicsFor(domain.RoleGriller), 4)
	defer cancelGrill()
	waiter, cancelWaiter := h.Subscribe(TopicsFor(domain.RoleWaiter), 4)
	defer cancelWaiter()

	h.BroadcastOrder(SSEEvent{Type: EventOrderUpdated, Data: 1}, domain.DepartmentGrill, domain.DepartmentGrill)

	// global + department feed, department deduplicated
	require.Len(t, grill, 2)
	require.Len(t, waiter, 1)
	ev := <-waiter
	assert.Equal(t, EventOrderUpdated, ev.Type)
}

func TestCancelIsIdempotent(t *testing.T) {
	h := NewSSEHub(nil)
	ch, cancel := h.Subscribe([]string{TopicOrdersGlobal()}, 1)
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	h.BroadcastOrders(SSEEvent{Type: EventOrderDeleted})
}

func TestCloseEndsSubscriptions(t *testing.T) {
	h := NewSSEHub(nil)
	cook, cancelCook := h.Subscribe(TopicsFor(domain.RoleCook), 1)
	waiter, cancelWaiter := h.Subscribe(TopicsFor(domain.RoleWaiter), 1)

	h.Close()
	h.Close()

	_, open := <-cook
	assert.False(t, open)
	_, open = <-waiter
	assert.False(t, open)

	// cancelling after Close must not close twice
	assert.NotPanics(t, cancelCook)
	assert.NotPanics(t, cancelWaiter)
	h.BroadcastOrders(SSEEvent{Type: EventOrderCreated})

	late, cancelLate := h.Subscribe([]string{TopicOrdersGlobal()}, 1)
	defer cancelLate()
	_, open = <-late
	assert.False(t, open)
}
