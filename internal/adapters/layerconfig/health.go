package layerconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that HealthCheck implements ports.HealthChecker.
var _ ports.HealthChecker = (*HealthCheck)(nil)

// HealthCheck reports whether the configuration file exists and every layer
// is configured.
type HealthCheck struct {
	resolver *Resolver
}

// NewHealthCheck creates a checker for r.
func NewHealthCheck(r *Resolver) *HealthCheck {
	return &HealthCheck{resolver: r}
}

// Name implements ports.HealthChecker.
func (*HealthCheck) Name() string { return "layer-config" }

// HealthCheck implements ports.HealthChecker.
func (h *HealthCheck) HealthCheck(context.Context) error {
	if !h.resolver.Found() {
		return fmt.Errorf("%s not found, run install: %w", h.resolver.Source(), domain.ErrNotConfigured)
	}

	var missing []string
	for _, s := range h.resolver.All() {
		if !s.Configured() {
			missing = append(missing, s.Layer.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("layers without path or namespace: %s: %w",
			strings.Join(missing, ", "), domain.ErrNotConfigured)
	}
	return nil
}
