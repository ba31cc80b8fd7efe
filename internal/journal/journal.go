// Package journal implements the ordered input log and periodic
// checkpoints that make rollback possible: Input entries sorted by
// game_time (stable on ties), GameState snapshots at fixed intervals, and
// the earliest_undiscovered watermark the rollback engine uses to decide
// whether a rewind is needed at all.
//
// The insertion-ordered, sorted-by-key shape is the same problem the
// teacher's internal/game/spatial/skiplist.go solves for its ZSET-style
// leaderboard; this package keeps that ordering discipline (insert at the
// correct sorted position, ties preserve arrival order) but uses a plain
// slice with a binary-search insertion point rather than a skip list,
// since a journal window between checkpoints stays small. Checkpoint
// pruning is adapted from internal/avatar/cache.go's evict-oldest policy.
package journal

import (
	"sort"
	"sync"

	"shitbrix/internal/state"
)

// CheckpointInterval is the tick spacing between automatic checkpoints.
const CheckpointInterval int64 = 150

type entry struct {
	input state.Input
	seq   uint64
}

type checkpoint struct {
	gameTime int64
	state    *state.GameState
}

// Limits bounds journal growth against a flooding or malfunctioning peer,
// mirroring the teacher's ResourceLimits / DefaultLimits() posture.
// Journal enforces MaxCheckpoints only; MaxInputsPerTick is carried but
// AddInput does not check it.
type Limits struct {
	MaxInputsPerTick int
	MaxCheckpoints   int
}

// DefaultLimits returns reasonable bounds for a two-player session.
func DefaultLimits() Limits {
	return Limits{MaxInputsPerTick: 64, MaxCheckpoints: 64}
}

// Journal is safe for concurrent use: add_input may be called from a
// coordinator's poll loop while synchronize reads discover_inputs/
// checkpoint_before from the simulation loop.
type Journal struct {
	mu sync.RWMutex

	limits Limits

	inputs  []entry
	nextSeq uint64

	checkpoints []checkpoint

	earliestUndiscovered int64
	hasUndiscovered      bool
}

// New creates an empty Journal.
func New(limits Limits) *Journal {
	return &Journal{limits: limits}
}

// AddInput inserts i at its correct sorted position (ties go after
// existing equal-time entries, preserving arrival order) and moves
// earliest_undiscovered backward if i is earlier than anything pending.
// An input still carrying state.TimeASAP is rejected: only the
// coordinator may resolve it to a concrete tick before journaling.
func (j *Journal) AddInput(i state.Input) {
	if i.Time() == state.TimeASAP {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	e := entry{input: i, seq: j.nextSeq}
	j.nextSeq++

	idx := sort.Search(len(j.inputs), func(k int) bool {
		return j.inputs[k].input.Time() > i.Time()
	})
	j.inputs = append(j.inputs, entry{})
	copy(j.inputs[idx+1:], j.inputs[idx:])
	j.inputs[idx] = e

	if !j.hasUndiscovered || i.Time() < j.earliestUndiscovered {
		j.earliestUndiscovered = i.Time()
		j.hasUndiscovered = true
	}
}

// EarliestUndiscovered returns the lowest game_time of any input added
// since the last DiscoverInputs call, or ok=false if there is none.
func (j *Journal) EarliestUndiscovered() (t int64, ok bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.earliestUndiscovered, j.hasUndiscovered
}

// DiscoverInputs returns every input with game_time in [from, to), and —
// if nothing newly added is still pending earlier than to — advances
// earliest_undiscovered to to. This is the only operation that moves the
// watermark forward; AddInput is the only one that moves it backward.
func (j *Journal) DiscoverInputs(from, to int64) []state.Input {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []state.Input
	for _, e := range j.inputs {
		t := e.input.Time()
		if t >= from && t < to {
			out = append(out, e.input)
		}
	}

	if !j.hasUndiscovered || j.earliestUndiscovered >= to {
		j.earliestUndiscovered = to
		j.hasUndiscovered = true
	}
	return out
}

// GetInputs returns every input with game_time exactly at, without
// removing them from the journal.
func (j *Journal) GetInputs(at int64) []state.Input {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []state.Input
	for _, e := range j.inputs {
		if e.input.Time() == at {
			out = append(out, e.input)
		} else if e.input.Time() > at {
			break
		}
	}
	return out
}

// AddCheckpoint appends a GameState snapshot, pruning the oldest retained
// checkpoint once Limits.MaxCheckpoints is exceeded.
func (j *Journal) AddCheckpoint(s *state.GameState) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.checkpoints = append(j.checkpoints, checkpoint{gameTime: s.GameTime, state: s})
	if j.limits.MaxCheckpoints > 0 && len(j.checkpoints) > j.limits.MaxCheckpoints {
		j.checkpoints = j.checkpoints[1:]
	}
}

// CheckpointBefore returns the largest checkpoint with game_time <= t, or
// nil if none exists (the caller should fall back to its own initial
// state).
func (j *Journal) CheckpointBefore(t int64) *state.GameState {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var best *checkpoint
	for i := range j.checkpoints {
		c := &j.checkpoints[i]
		if c.gameTime <= t && (best == nil || c.gameTime > best.gameTime) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return best.state
}

// Retract removes every arbiter-origin input (SpawnBlockInput,
// SpawnGarbageInput) with game_time > cutoff; PlayerInput entries are
// preserved regardless of their time. Checkpoints captured after cutoff
// are also dropped, since they may have baked in now-invalid arbiter
// decisions. earliest_undiscovered is set to cutoff+1: a late player
// input at cutoff requires re-running arbitration from there.
func (j *Journal) Retract(cutoff int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := 0
	for _, e := range j.inputs {
		if e.input.Time() > cutoff {
			switch e.input.(type) {
			case state.SpawnBlockInput, state.SpawnGarbageInput:
				continue
			}
		}
		j.inputs[n] = e
		n++
	}
	j.inputs = j.inputs[:n]

	j.earliestUndiscovered = cutoff + 1
	j.hasUndiscovered = true

	kept := j.checkpoints[:0]
	for _, c := range j.checkpoints {
		if c.gameTime <= cutoff {
			kept = append(kept, c)
		}
	}
	j.checkpoints = kept
}

// Inputs returns every recorded input in game_time order (ties in
// insertion order) — used by the round-trip and ordering property tests.
func (j *Journal) Inputs() []state.Input {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]state.Input, len(j.inputs))
	for i, e := range j.inputs {
		out[i] = e.input
	}
	return out
}
