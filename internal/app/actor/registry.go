// Package actor binds the acting executor to use case types.
//
// There is one binding slot per use case type, not per instance. A Registry
// is an explicit value passed through the call graph: callers that need
// isolation (parallel tests, embedded tools) construct their own.
//
//	reg := actor.New()
//	actor.ActingAs[*CreateOrder](reg, usecase.Actor("alice"))
//	exec, ok := reg.CurrentExecutor(actor.TypeFor[*CreateOrder]())
package actor

import (
	"reflect"
	"sync"

	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
)

// binding wraps the executor so a nil executor can be stored in a slot.
type binding struct {
	executor usecase.Executor
}

// Registry holds the executor bound to each use case type. Slots are created
// lazily on first bind and never removed. Each slot has its own lock, so
// binds for different types do not contend.
type Registry struct {
	slots sync.Map // reflect.Type -> *SafeRef[binding]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Handle refers to the binding slot of one use case type.
type Handle struct {
	registry    *Registry
	useCaseType reflect.Type
}

// Executor returns the executor currently bound for the handle's type.
func (h Handle) Executor() (usecase.Executor, bool) {
	return h.registry.CurrentExecutor(h.useCaseType)
}

// Type returns the use case type the handle is bound to.
func (h Handle) Type() reflect.Type { return h.useCaseType }

// Bind sets the executor for useCaseType, replacing any previous binding.
// Binding a nil executor resets the slot to the system context.
func (r *Registry) Bind(useCaseType reflect.Type, executor usecase.Executor) Handle {
	slot, _ := r.slots.LoadOrStore(useCaseType, NewRef(binding{}))
	slot.(*SafeRef[binding]).Set(binding{executor: executor})
	return Handle{registry: r, useCaseType: useCaseType}
}

// CurrentExecutor returns the bound executor. The second result is false
// before any bind or after a nil bind; callers treat that as the system
// context, not as an error.
func (r *Registry) CurrentExecutor(useCaseType reflect.Type) (usecase.Executor, bool) {
	slot, ok := r.slots.Load(useCaseType)
	if !ok {
		return nil, false
	}
	b := slot.(*SafeRef[binding]).Get()
	return b.executor, b.executor != nil
}

// TypeOf returns the binding key of a use case value.
func TypeOf(uc usecase.UseCase) reflect.Type {
	return reflect.TypeOf(uc)
}

// TypeFor returns the binding key of the use case type U.
func TypeFor[U usecase.UseCase]() reflect.Type {
	return reflect.TypeFor[U]()
}

// ActingAs binds executor to the use case type U.
func ActingAs[U usecase.UseCase](r *Registry, executor usecase.Executor) Handle {
	return r.Bind(TypeFor[U](), executor)
}
