// Package optimistic applies a predicted state change before the server
// confirms it, with an exact rollback if it does not.
package optimistic

import "sync/atomic"

// Mutation remembers the state before an optimistic step.
type Mutation[S any] struct {
	before    S
	predicted S
}

// Apply runs step on state and returns the pending mutation. The snapshot is
// a plain copy of state, so S should be a value type.
func Apply[S any](state S, step func(S) S) *Mutation[S] {
	return &Mutation[S]{before: state, predicted: step(state)}
}

// Before returns the snapshot taken by Apply.
func (m *Mutation[S]) Before() S {
	return m.before
}

// State returns the predicted state.
func (m *Mutation[S]) State() S {
	return m.predicted
}

// Commit reconciles the predicted state with what the server reported.
// A nil reconcile keeps the prediction.
func (m *Mutation[S]) Commit(reconcile func(S) S) S {
	if reconcile == nil {
		return m.predicted
	}
	return reconcile(m.predicted)
}

// Rollback returns the state exactly as it was before Apply.
func (m *Mutation[S]) Rollback() S {
	return m.before
}

// Guard allows one operation in flight at a time; callers that lose the race
// are expected to drop their action rather than wait.
type Guard struct {
	busy atomic.Bool
}

func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}

func (g *Guard) Busy() bool {
	return g.busy.Load()
}
