// Package usecase defines the contract every use case fulfils and the
// lifecycle events emitted around its execution.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Executor is whoever is acting when a use case runs. The core only needs
// an identifier for logging; richer identities are the caller's concern.
type Executor interface {
	ActorID() string
}

// UseCase is the explicit entry point contract. Handlers are passed to the
// lifecycle runner separately so a use case can expose several operations.
type UseCase interface {
	// Name identifies the use case in logs, spans, and metrics.
	Name() string

	// Rollback performs compensating work after a domain failure. It is
	// called at most once per failed invocation, before the failure is
	// returned to the caller.
	Rollback(ctx context.Context) error
}

// Base is embedded by use cases that have nothing to compensate.
type Base struct{}

// Rollback is a no-op.
func (Base) Rollback(context.Context) error { return nil }

// EventKind is a lifecycle milestone.
type EventKind int

const (
	Started EventKind = iota + 1
	Completed
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is emitted synchronously to observers. ID is shared by the Started
// and Completed events of the same invocation. Executor is nil when no actor
// is bound (system context).
type Event struct {
	ID       uuid.UUID
	Kind     EventKind
	UseCase  UseCase
	Executor Executor
	At       time.Time
}

// ActorID returns the executor identifier, or "system" when unbound.
func (e Event) ActorID() string {
	if e.Executor == nil {
		return "system"
	}
	return e.Executor.ActorID()
}

// Actor is a plain named executor.
type Actor string

// ActorID implements Executor.
func (a Actor) ActorID() string { return string(a) }
