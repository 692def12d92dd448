package events

import (
	"testing"

	"github.com/nathoo/arpgcore/types"
)

func TestCollector_StampsTick(t *testing.T) {
	c := NewCollector(42)
	c.Emit(types.Event{Type: types.EventHit, Tick: 7})
	c.Emit(types.Event{Type: types.EventDefeated})

	evs := c.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	for _, e := range evs {
		if e.Tick != 42 {
			t.Errorf("event %s tick = %d, want 42", e.Type, e.Tick)
		}
	}
}

func TestDispatch_MatchesEventType(t *testing.T) {
	var b Bus
	var hits, all []types.EventType

	b.Subscribe(types.EventHit, func(e types.Event) { hits = append(hits, e.Type) })
	b.SubscribeAll(func(e types.Event) { all = append(all, e.Type) })

	b.Dispatch([]types.Event{
		{Type: types.EventHit},
		{Type: types.EventSpawn},
		{Type: types.EventHit},
	})

	if len(hits) != 2 {
		t.Errorf("expected 2 hit deliveries, got %d", len(hits))
	}
	if len(all) != 3 || all[1] != types.EventSpawn {
		t.Errorf("catch-all saw %v", all)
	}
}

func TestDispatch_TypedBeforeCatchAll(t *testing.T) {
	var b Bus
	var order []string

	b.SubscribeAll(func(types.Event) { order = append(order, "all") })
	b.Subscribe(types.EventDefeated, func(types.Event) { order = append(order, "first") })
	b.Subscribe(types.EventDefeated, func(types.Event) { order = append(order, "second") })

	b.Dispatch([]types.Event{{Type: types.EventDefeated}})

	want := []string{"first", "second", "all"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDispatch_NoSubscribers(t *testing.T) {
	var b Bus
	b.Dispatch([]types.Event{{Type: types.EventHit}})
}

func TestFilter(t *testing.T) {
	evs := []types.Event{{Type: types.EventHit}, {Type: types.EventBlocked}, {Type: types.EventHit}}
	if got := Filter(evs, types.EventHit); len(got) != 2 {
		t.Errorf("Filter returned %d events, want 2", len(got))
	}
	if got := Filter(evs, types.EventRespawn); got != nil {
		t.Errorf("Filter with no matches = %v, want nil", got)
	}
}
