package preview

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// EventKind identifies a session event.
type EventKind int

const (
	PreviewStarted EventKind = iota
	PreviewUpdated
	PreviewStopped
	PreviewApplied
)

func (k EventKind) String() string {
	switch k {
	case PreviewStarted:
		return "started"
	case PreviewUpdated:
		return "updated"
	case PreviewStopped:
		return "stopped"
	case PreviewApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a session operation commits.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

func newEvent(kind EventKind, size geometry.Size) Event {
	return Event{Kind: kind, Width: size.Width, Height: size.Height}
}

// Size returns the event dimensions.
func (e Event) Size() geometry.Size {
	return geometry.Size{Width: e.Width, Height: e.Height}
}

// hub fans events out to subscribers. Delivery is synchronous on the caller's
// goroutine; a panicking subscriber is logged and skipped.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
	logger *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{subs: make(map[int]func(Event)), logger: logger}
}

func (h *hub) subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) emit(e Event) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	// Registration order.
	slices.Sort(ids)
	for _, id := range ids {
		h.mu.Lock()
		fn, ok := h.subs[id]
		h.mu.Unlock()
		if !ok {
			continue
		}
		h.deliver(fn, e)
	}
}

func (h *hub) deliver(fn func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("preview subscriber panic recovered", "event", e.Kind.String(), "panic", r)
		}
	}()
	fn(e)
}
