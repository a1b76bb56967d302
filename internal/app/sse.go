package app

import (
	"log/slog"
	"sync"

	"desideri-go/internal/domain"
)

type SSEEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventOrderCreated = "order:created"
	EventOrderUpdated = "order:updated"
	EventOrderDeleted = "order:deleted"
)

type SSEHub struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   map[string]map[chan SSEEvent]struct{} // topic -> set(ch)
	closed bool
}

func NewSSEHub(logger *slog.Logger) *SSEHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHub{
		log:  logger,
		subs: map[string]map[chan SSEEvent]struct{}{},
	}
}

func (h *SSEHub) Subscribe(topics []string, buf int) (<-chan SSEEvent, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan SSEEvent, buf)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = map[chan SSEEvent]struct{}{}
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.closed {
				return // Close already closed ch
			}
			for _, t := range topics {
				if set, ok := h.subs[t]; ok {
					delete(set, ch)
					if len(set) == 0 {
						delete(h.subs, t)
					}
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Close ends every open stream and refuses new ones. It is registered as a
// server shutdown hook so long-lived event streams do not hold it open.
func (h *SSEHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	chans := map[chan SSEEvent]struct{}{}
	for _, set := range h.subs {
		for ch := range set {
			chans[ch] = struct{}{}
		}
	}
	h.subs = map[string]map[chan SSEEvent]struct{}{}
	for ch := range chans {
		close(ch)
	}
	h.log.Info("event streams closed", "subscribers", len(chans))
}

func (h *SSEHub) Broadcast(topic string, ev SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			h.log.Debug("sse subscriber slow, event dropped", "topic", topic, "type", ev.Type)
		}
	}
}

/* ---- topic helpers ---- */

func TopicDepartment(d domain.Department) string { return "department:" + string(d) }
func TopicOrdersGlobal() string                  { return "orders:global" }

// TopicsFor lists what a role listens to: every order, plus its own
// department feed when it has one.
func TopicsFor(role domain.Role) []string {
	topics := []string{TopicOrdersGlobal()}
	if d, ok := role.Department(); ok {
		topics = append(topics, TopicDepartment(d))
	}
	return topics
}

func (h *SSEHub) BroadcastOrders(ev SSEEvent) { h.Broadcast(TopicOrdersGlobal(), ev) }

// BroadcastOrder fans ev out to the global feed and to every department
// touched by the order.
func (h *SSEHub) BroadcastOrder(ev SSEEvent, depts ...domain.Department) {
	h.BroadcastOrders(ev)
	seen := map[domain.Department]bool{}
	for _, d := range depts {
		if seen[d] {
			continue
		}
		seen[d] = true
		h.Broadcast(TopicDepartment(d), ev)
	}
}
