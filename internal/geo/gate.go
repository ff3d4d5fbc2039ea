package geo

import (
	"context"
	"sync"
)

// Gate is a one-shot readiness notification.  It opens once the first
// snapshot has been published and never closes again.
type Gate struct {
	once sync.Once
	done chan struct{}
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Open opens the gate and releases every waiter.  It is safe to call more
// than once.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.done) })
}

// Ready reports whether the gate is open.
func (g *Gate) Ready() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the gate opens.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until the gate opens or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
