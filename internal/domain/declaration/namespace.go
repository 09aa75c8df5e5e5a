package declaration

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

// Separator splits namespace segments.
const Separator = `\`

// ErrClassification marks a fully-qualified name that cannot be classified.
var ErrClassification = fmt.Errorf("%w: malformed qualified name", domain.ErrValidation)

// Classify reports whether fqn lies in one of the target namespaces. A name
// is targeted when it equals a target or continues it with a separator, so
// App\Services\Foo is not inside App\Service. Matching is case-sensitive and
// empty targets never match.
//
// An empty name or a name with an empty final segment returns ErrClassification.
func Classify(fqn string, targets []string) (bool, error) {
	if fqn == "" || strings.HasSuffix(fqn, Separator) {
		return false, fmt.Errorf("%w: %q", ErrClassification, fqn)
	}

	for _, t := range targets {
		if t == "" {
			continue
		}
		if fqn == t || strings.HasPrefix(fqn, t+Separator) {
			return true, nil
		}
	}
	return false, nil
}

// IsTargeted is Classify with malformed names treated as not targeted.
func IsTargeted(fqn string, targets []string) bool {
	ok, err := Classify(fqn, targets)
	if err != nil {
		return false
	}
	return ok
}

// Join builds a qualified name from segments, skipping empty ones and
// trimming stray separators at the joints.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, Separator)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}
