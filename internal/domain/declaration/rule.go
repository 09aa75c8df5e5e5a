package declaration

import (
	"slices"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

// Rule tags classes in the target namespaces with a marker interface.
// A Rule is immutable once built and may be applied to any number of nodes.
type Rule struct {
	marker  string
	targets []string
}

// NewRule builds a rule for the given marker and target namespaces.
// The targets slice is copied.
func NewRule(marker string, targets ...string) Rule {
	return Rule{marker: marker, targets: slices.Clone(targets)}
}

// Marker returns the interface name the rule injects.
func (r Rule) Marker() string { return r.marker }

// Targets returns a copy of the rule's target namespaces.
func (r Rule) Targets() []string { return slices.Clone(r.targets) }

// Apply runs the rule against a single node. Non-class declarations are
// Skipped without mutation; classes that already declare the marker or lie
// outside the targets are Unchanged. Applying the same rule twice is a no-op
// the second time.
func (r Rule) Apply(node Node) MutationResult {
	if node == nil || node.Kind() != KindClass {
		return Skipped
	}
	if r.marker == "" {
		return Unchanged
	}
	if slices.Contains(node.Interfaces(), r.marker) {
		return Unchanged
	}
	if !IsTargeted(node.FullyQualifiedName(), r.targets) {
		return Unchanged
	}

	node.AddInterface(r.marker)
	return Modified
}

// RuleSet is a group of rules applied together, typically one per layer.
// Because each rule only checks and appends its own marker, the order of
// the rules does not affect the outcome.
type RuleSet []Rule

// Report tallies rule outcomes over a batch. A node counts as Modified when
// at least one rule modified it, and as Skipped when every rule skipped it.
type Report struct {
	Modified  int
	Unchanged int
	Skipped   int
}

// Changed reports whether any node was modified.
func (r Report) Changed() bool { return r.Modified > 0 }

// Add merges another report into r.
func (r *Report) Add(other Report) {
	r.Modified += other.Modified
	r.Unchanged += other.Unchanged
	r.Skipped += other.Skipped
}

// Apply runs every rule against node and returns the combined result.
func (rs RuleSet) Apply(node Node) MutationResult {
	if len(rs) == 0 {
		if node == nil || node.Kind() != KindClass {
			return Skipped
		}
		return Unchanged
	}

	combined := Skipped
	for _, rule := range rs {
		switch rule.Apply(node) {
		case Modified:
			combined = Modified
		case Unchanged:
			if combined == Skipped {
				combined = Unchanged
			}
		case Skipped:
		}
	}
	return combined
}

// ApplyAll runs the set against every node in the batch.
func (rs RuleSet) ApplyAll(nodes []Node) Report {
	var report Report
	for _, n := range nodes {
		switch rs.Apply(n) {
		case Modified:
			report.Modified++
		case Unchanged:
			report.Unchanged++
		case Skipped:
			report.Skipped++
		}
	}
	return report
}

// LayerRules builds one rule per configured layer. The marker of each rule
// is the layer's marker interface inside markerNamespace; the target is the
// layer's namespace.
func LayerRules(specs []domain.LayerSpec, markerNamespace string) RuleSet {
	rules := make(RuleSet, 0, len(specs))
	for _, spec := range specs {
		if !spec.Configured() {
			continue
		}
		marker := Join(markerNamespace, spec.Layer.MarkerInterface())
		rules = append(rules, NewRule(marker, Join(spec.Namespace)))
	}
	return rules
}
