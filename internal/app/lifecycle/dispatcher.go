package lifecycle

import (
	"context"
	"sync"

	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
)

// Observer receives lifecycle events synchronously. A non-nil error stops
// the dispatch and is propagated to the invoking caller.
type Observer func(ctx context.Context, event usecase.Event) error

// Dispatcher fans lifecycle events out to observers registered per event
// kind, in registration order.
type Dispatcher struct {
	mu        sync.RWMutex
	observers map[usecase.EventKind][]Observer
}

// NewDispatcher creates a dispatcher with no observers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{observers: make(map[usecase.EventKind][]Observer)}
}

// Subscribe registers fn for events of the given kind. Safe for concurrent use.
func (d *Dispatcher) Subscribe(kind usecase.EventKind, fn Observer) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[kind] = append(d.observers[kind], fn)
}

// Dispatch delivers the event to every observer of its kind and returns the
// first observer error. The observer list is copied under a read lock so
// observers run without holding it and may subscribe further observers.
func (d *Dispatcher) Dispatch(ctx context.Context, event usecase.Event) error {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers[event.Kind]))
	copy(observers, d.observers[event.Kind])
	d.mu.RUnlock()

	for _, fn := range observers {
		if err := fn(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
