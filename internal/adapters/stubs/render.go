package stubs

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

// RenderString replaces {{key}} placeholders with vars values.
// It returns an error wrapping domain.ErrValidation if a variable is missing
// or a placeholder is malformed.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", fmt.Errorf("unclosed template expression: %w", domain.ErrValidation)
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", fmt.Errorf("empty template expression: %w", domain.ErrValidation)
		}

		value, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("missing variable %q: %w", key, domain.ErrValidation)
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}
