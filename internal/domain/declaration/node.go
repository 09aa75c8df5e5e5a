// Package declaration implements namespace classification and the marker
// interface injection rule that tags class declarations with the interface
// of the architectural layer they live in.
//
// The rule only ever touches the single node it is applied to: it never
// inspects siblings or parents, never resolves inheritance, and never checks
// that the class satisfies the interface's method contract.
package declaration

// NodeKind distinguishes the class-like declaration forms a parser reports.
type NodeKind int

const (
	KindClass NodeKind = iota
	KindInterface
	KindTrait
	KindEnum
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Node is a single declaration borrowed from a parser for the duration of
// one rewrite pass. Implementations must keep Interfaces in declaration order
// and append in AddInterface.
type Node interface {
	Kind() NodeKind
	FullyQualifiedName() string
	Interfaces() []string
	AddInterface(name string)
}

// MutationResult is the outcome of applying a rule to one node.
type MutationResult int

const (
	Unchanged MutationResult = iota
	Modified
	Skipped
)

// String implements fmt.Stringer.
func (r MutationResult) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}
