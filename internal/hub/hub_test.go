package hub_test

import (
	"testing"

	"shitbrix/internal/hub"
)

// TestEmitDispatchesToAllSubscribersInOrder verifies every subscribed
// observer receives the event, in subscription order.
func TestEmitDispatchesToAllSubscribersInOrder(t *testing.T) {
	h := hub.New()
	var order []int
	h.Subscribe(func(e hub.Event) { order = append(order, 1) })
	h.Subscribe(func(e hub.Event) { order = append(order, 2) })

	h.Emit(hub.Event{Kind: hub.Match})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("dispatch order = %v, want [1 2]", order)
	}
}

// TestEmitWithNoSubscribersDoesNotPanic verifies Emit is a no-op when
// nothing has subscribed.
func TestEmitWithNoSubscribersDoesNotPanic(t *testing.T) {
	h := hub.New()
	h.Emit(hub.Event{Kind: hub.Starve})
}

// TestEventCarriesTrivia verifies the dispatched Event preserves the
// GameTime and Player fields passed in.
func TestEventCarriesTrivia(t *testing.T) {
	h := hub.New()
	var got hub.Event
	h.Subscribe(func(e hub.Event) { got = e })

	h.Emit(hub.Event{Kind: hub.Chain, Trivia: hub.Trivia{GameTime: 42, Player: 1}, Counter: 3})

	if got.Trivia.GameTime != 42 || got.Trivia.Player != 1 {
		t.Errorf("trivia = %+v, want game_time 42, player 1", got.Trivia)
	}
	if got.Counter != 3 {
		t.Errorf("counter = %d, want 3", got.Counter)
	}
}
