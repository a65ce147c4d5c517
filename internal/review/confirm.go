package review

import (
	"context"
	"sync"
)

// DeleteOutcome is the result of a snapshot delete handshake.
type DeleteOutcome string

const (
	// DeleteConfirmed means the snapshot was cleared.
	DeleteConfirmed DeleteOutcome = "deleted"
	// DeleteCancelled means the user declined and state is untouched.
	DeleteCancelled DeleteOutcome = "cancelled"
)

// Confirmer is the seam for a user confirmation dialog. Decide blocks
// until the user answers or ctx is cancelled.
type Confirmer interface {
	Decide(ctx context.Context) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context) (bool, error)

// Decide implements Confirmer.
func (f ConfirmerFunc) Decide(ctx context.Context) (bool, error) { return f(ctx) }

// Confirm returns a pre-resolved Confirmer. Used where the caller already
// carries the decision, e.g. a confirm flag on an HTTP request.
func Confirm(ok bool) Confirmer {
	return ConfirmerFunc(func(context.Context) (bool, error) { return ok, nil })
}

// Decision is a single-shot confirmation handle: one side awaits Decide,
// the other fulfils it exactly once with Resolve. Resolving more than once
// is a no-op.
type Decision struct {
	once sync.Once
	ch   chan bool
}

// NewDecision creates an unresolved Decision.
func NewDecision() *Decision {
	return &Decision{ch: make(chan bool, 1)}
}

// Resolve records the user's answer. Only the first call takes effect.
func (d *Decision) Resolve(ok bool) {
	d.once.Do(func() { d.ch <- ok })
}

// Decide implements Confirmer.
func (d *Decision) Decide(ctx context.Context) (bool, error) {
	select {
	case ok := <-d.ch:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
