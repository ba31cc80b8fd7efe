// Audit log: a bounded, rate-limited, asynchronously flushed record of
// game events distinct from the rollback journal above. Not load-bearing
// for simulation correctness — it exists for post-hoc debugging and to
// back the textual replay file (spec.md §6). Grounded on the teacher's
// internal/game/event_log.go (circular buffer, per-source rate limiter,
// batched async disk writer).
package journal

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"shitbrix/internal/hub"
)

// AuditEntry is one recorded game event, JSON-encodable for the replay
// sink or a debug log file.
type AuditEntry struct {
	Seq      uint64    `json:"seq"`
	Kind     string    `json:"kind"`
	GameTime int64     `json:"game_time"`
	Player   int       `json:"player"`
	Combo    int       `json:"combo,omitempty"`
	Chaining bool      `json:"chaining,omitempty"`
	Counter  int       `json:"counter,omitempty"`
}

const auditBufferSize = 4096

// AuditLog is a fixed-size ring buffer of recent events, written
// asynchronously in batches. Overflowing entries silently evict the
// oldest — the log is diagnostic, never authoritative.
type AuditLog struct {
	mu      sync.Mutex
	entries [auditBufferSize]AuditEntry
	head    int
	count   int
	nextSeq uint64

	limiter *rate.Limiter

	flushInterval time.Duration
	sink          func([]AuditEntry)
	logger        *log.Logger

	stop chan struct{}
	done chan struct{}
}

// NewAuditLog creates an audit log flushing batches to sink every
// flushInterval via a background goroutine started by Start. logger
// receives a message whenever the sink panics while writing a batch.
func NewAuditLog(sink func([]AuditEntry), flushInterval time.Duration, logger *log.Logger) *AuditLog {
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &AuditLog{
		limiter:       rate.NewLimiter(rate.Limit(200), 400),
		flushInterval: flushInterval,
		sink:          sink,
		logger:        logger,
	}
}

// Observer returns a hub.Observer that records every event it sees.
func (a *AuditLog) Observer() hub.Observer {
	return func(e hub.Event) {
		a.record(e)
	}
}

func (a *AuditLog) record(e hub.Event) {
	if !a.limiter.Allow() {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := AuditEntry{
		Seq:      a.nextSeq,
		Kind:     e.Kind.String(),
		GameTime: e.Trivia.GameTime,
		Player:   e.Trivia.Player,
		Combo:    e.Combo,
		Chaining: e.Chaining,
		Counter:  e.Counter,
	}
	a.nextSeq++

	idx := (a.head + a.count) % auditBufferSize
	a.entries[idx] = entry
	if a.count < auditBufferSize {
		a.count++
	} else {
		a.head = (a.head + 1) % auditBufferSize
	}
}

// Start launches the batched async writer goroutine. Stop must be called
// to release it.
func (a *AuditLog) Start() {
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.writerLoop()
}

func (a *AuditLog) writerLoop() {
	defer close(a.done)
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.stop:
			a.flush()
			return
		}
	}
}

func (a *AuditLog) flush() {
	batch := a.drain()
	if len(batch) == 0 || a.sink == nil {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil && a.logger != nil {
				a.logger.Printf("journal: audit sink panicked: %v", r)
			}
		}()
		a.sink(batch)
	}()
}

func (a *AuditLog) drain() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]AuditEntry, a.count)
	for i := 0; i < a.count; i++ {
		out[i] = a.entries[(a.head+i)%auditBufferSize]
	}
	a.head, a.count = 0, 0
	return out
}

// Stop flushes any remaining entries and waits for the writer goroutine
// to exit.
func (a *AuditLog) Stop() {
	if a.stop == nil {
		return
	}
	close(a.stop)
	<-a.done
}

// JSONSink is a convenience AuditLog sink writing one JSON object per
// line via logger.
func JSONSink(logger *log.Logger) func([]AuditEntry) {
	return func(batch []AuditEntry) {
		for _, e := range batch {
			b, err := json.Marshal(e)
			if err != nil {
				continue
			}
			logger.Println(string(b))
		}
	}
}
