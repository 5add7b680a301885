package services

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a call that a newer call replaced.
var ErrSuperseded = errors.New("superseded by a newer request")

// Latest lets overlapping calls race while only the newest one may apply
// its result. Starting a call cancels the context of the one before it.
type Latest struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket is one call started through a Latest gate
type Ticket struct {
	gate   *Latest
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a call and cancels the previous one
func (l *Latest) Begin(ctx context.Context) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.cancel = cancel
	return ctx, &Ticket{gate: l, gen: l.gen, cancel: cancel}
}

// Finish ends the call. A superseded call gets ErrSuperseded whatever its
// outcome. Otherwise err is returned, and apply runs under the gate lock
// when err is nil.
func (t *Ticket) Finish(err error, apply func()) error {
	l := t.gate
	l.mu.Lock()
	defer l.mu.Unlock()
	defer t.cancel()

	if t.gen != l.gen {
		return ErrSuperseded
	}
	l.cancel = nil
	if err != nil {
		return err
	}
	if apply != nil {
		apply()
	}
	return nil
}
