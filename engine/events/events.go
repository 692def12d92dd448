// Package events collects the events a tick produces and dispatches them to
// subscribers in a single pass. Subscribers observe; they cannot emit.
package events

import "github.com/nathoo/arpgcore/types"

// Handler receives one event.
type Handler func(types.Event)

// Collector accumulates events for one tick in emission order.
type Collector struct {
	Tick   int64
	events []types.Event
}

// NewCollector starts collecting for a tick.
func NewCollector(tick int64) *Collector {
	return &Collector{Tick: tick}
}

// Emit records an event, stamping it with the collector's tick.
func (c *Collector) Emit(e types.Event) {
	e.Tick = c.Tick
	c.events = append(c.events, e)
}

// Events returns the collected events.
func (c *Collector) Events() []types.Event {
	return c.events
}

// Bus fans events out to subscribers.
type Bus struct {
	byType map[types.EventType][]Handler
	all    []Handler
}

// Subscribe registers a handler for one event type. Handlers run in
// registration order.
func (b *Bus) Subscribe(t types.EventType, h Handler) {
	if b.byType == nil {
		b.byType = map[types.EventType][]Handler{}
	}
	b.byType[t] = append(b.byType[t], h)
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.all = append(b.all, h)
}

// Dispatch delivers events in order. For each event, typed handlers run
// before catch-all handlers.
func (b *Bus) Dispatch(evs []types.Event) {
	for _, e := range evs {
		for _, h := range b.byType[e.Type] {
			h(e)
		}
		for _, h := range b.all {
			h(e)
		}
	}
}

// Filter returns the events of the given type.
func Filter(evs []types.Event, t types.EventType) []types.Event {
	var out []types.Event
	for _, e := range evs {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
