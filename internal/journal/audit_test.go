package journal_test

import (
	"sync"
	"testing"
	"time"

	"shitbrix/internal/hub"
	"shitbrix/internal/journal"
)

// TestAuditLogObserverRecordsAndFlushes verifies an event dispatched
// through the Observer eventually reaches the sink after Stop flushes.
func TestAuditLogObserverRecordsAndFlushes(t *testing.T) {
	var mu sync.Mutex
	var got []journal.AuditEntry

	a := journal.NewAuditLog(func(batch []journal.AuditEntry) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, batch...)
	}, time.Hour, nil)
	a.Start()

	h := hub.New()
	h.Subscribe(a.Observer())
	h.Emit(hub.Event{Kind: hub.Match, Trivia: hub.Trivia{GameTime: 5, Player: 0}, Combo: 4})

	a.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d flushed entries, want 1", len(got))
	}
	if got[0].Kind != "match" || got[0].GameTime != 5 || got[0].Combo != 4 {
		t.Errorf("entry = %+v, want kind match, game_time 5, combo 4", got[0])
	}
}

// TestAuditLogStopWithoutStartIsANoOp verifies Stop is safe to call on a
// log that was never Start()ed.
func TestAuditLogStopWithoutStartIsANoOp(t *testing.T) {
	a := journal.NewAuditLog(nil, time.Second, nil)
	a.Stop()
}
