package domain

import "context"

// Action represents a single executable operation with rollback capability.
// Scaffolding stages filesystem changes as actions so a failed run can be
// compensated step by step.
//
// Action is defined in the domain layer so that use cases can reference it
// without depending on the application layer (dependency inversion).
type Action interface {
	// Execute performs the action. The context carries cancellation and
	// deadline signals that the implementation should respect.
	Execute(ctx context.Context) error

	// Rollback reverses the effect of a previously successful Execute call.
	// Rollback is only called if Execute returned nil.
	Rollback(ctx context.Context) error

	// Description returns a human-readable description of the action for
	// logging purposes (e.g., "write src/Entities/Order.php").
	Description() string
}
