package declaration_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
)

// fakeNode is an in-memory declaration that counts mutations.
type fakeNode struct {
	kind       declaration.NodeKind
	name       string
	interfaces []string
	adds       int
}

func (n *fakeNode) Kind() declaration.NodeKind   { return n.kind }
func (n *fakeNode) FullyQualifiedName() string   { return n.name }
func (n *fakeNode) Interfaces() []string         { return n.interfaces }
func (n *fakeNode) AddInterface(name string)     { n.interfaces = append(n.interfaces, name); n.adds++ }
func newClass(name string, ifaces ...string) *fakeNode {
	return &fakeNode{kind: declaration.KindClass, name: name, interfaces: ifaces}
}

func TestRuleApply_TargetedClassIsModified(t *testing.T) {
	t.Parallel()

	node := newClass(`App\UseCases\CreateOrder`)
	rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)

	got := rule.Apply(node)

	assert.Equal(t, declaration.Modified, got)
	assert.Equal(t, []string{"UseCaseInterface"}, node.interfaces)
}

func TestRuleApply_SecondApplicationIsUnchanged(t *testing.T) {
	t.Parallel()

	node := newClass(`App\UseCases\CreateOrder`)
	rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)

	first := rule.Apply(node)
	second := rule.Apply(node)

	assert.Equal(t, declaration.Modified, first)
	assert.Equal(t, declaration.Unchanged, second)
	assert.Equal(t, []string{"UseCaseInterface"}, node.interfaces)
	assert.Equal(t, 1, node.adds)
}

func TestRuleApply_NotTargetedIsUnchanged(t *testing.T) {
	t.Parallel()

	node := newClass(`App\Services\Billing`)
	rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)

	assert.Equal(t, declaration.Unchanged, rule.Apply(node))
	assert.Empty(t, node.interfaces)
	assert.Zero(t, node.adds)
}

func TestRuleApply_AlreadyImplementing(t *testing.T) {
	t.Parallel()

	node := newClass(`App\UseCases\CreateOrder`, "Countable", "UseCaseInterface")
	rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)

	assert.Equal(t, declaration.Unchanged, rule.Apply(node))
	assert.Zero(t, node.adds)
}

func TestRuleApply_NonClassIsSkipped(t *testing.T) {
	t.Parallel()

	for _, kind := range []declaration.NodeKind{declaration.KindInterface, declaration.KindTrait, declaration.KindEnum} {
		node := &fakeNode{kind: kind, name: `App\UseCases\Thing`, interfaces: []string{"Stringable"}}
		rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)

		if got := rule.Apply(node); got != declaration.Skipped {
			t.Errorf("Apply(%s) = %s, want skipped", kind, got)
		}
		if diff := cmp.Diff([]string{"Stringable"}, node.interfaces); diff != "" {
			t.Errorf("%s interfaces changed (-want +got):\n%s", kind, diff)
		}
	}
}

func TestRuleApply_NilNodeIsSkipped(t *testing.T) {
	t.Parallel()

	rule := declaration.NewRule("UseCaseInterface", `App\UseCases`)
	assert.Equal(t, declaration.Skipped, rule.Apply(nil))
}

func TestRuleApply_PreservesExistingOrder(t *testing.T) {
	t.Parallel()

	node := newClass(`App\Entities\Order`, "JsonSerializable", "Countable")
	rule := declaration.NewRule("EntityInterface", `App\Entities`)

	rule.Apply(node)

	want := []string{"JsonSerializable", "Countable", "EntityInterface"}
	if diff := cmp.Diff(want, node.interfaces); diff != "" {
		t.Errorf("interfaces mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRule_CopiesTargets(t *testing.T) {
	t.Parallel()

	targets := []string{`App\UseCases`}
	rule := declaration.NewRule("UseCaseInterface", targets...)
	targets[0] = `App\Other`

	assert.Equal(t, []string{`App\UseCases`}, rule.Targets())
}

func TestRuleSet_OrderIndependent(t *testing.T) {
	t.Parallel()

	entity := declaration.NewRule("EntityInterface", `App`)
	aggregate := declaration.NewRule("AggregateInterface", `App\Domain`)

	a := newClass(`App\Domain\Order`)
	b := newClass(`App\Domain\Order`)

	declaration.RuleSet{entity, aggregate}.Apply(a)
	declaration.RuleSet{aggregate, entity}.Apply(b)

	assert.ElementsMatch(t, a.interfaces, b.interfaces)
	assert.Len(t, a.interfaces, 2)

	// Re-applying either order is a no-op.
	assert.Equal(t, declaration.Unchanged, declaration.RuleSet{entity, aggregate}.Apply(b))
	assert.Len(t, b.interfaces, 2)
}

func TestRuleSet_ApplyAll(t *testing.T) {
	t.Parallel()

	rules := declaration.RuleSet{
		declaration.NewRule("UseCaseInterface", `App\UseCases`),
		declaration.NewRule("ServiceInterface", `App\Services`),
	}
	nodes := []declaration.Node{
		newClass(`App\UseCases\CreateOrder`),
		newClass(`App\Services\Billing`, "ServiceInterface"),
		&fakeNode{kind: declaration.KindInterface, name: `App\UseCases\Port`},
		newClass(`App\Http\Kernel`),
	}

	report := rules.ApplyAll(nodes)

	assert.Equal(t, declaration.Report{Modified: 1, Unchanged: 2, Skipped: 1}, report)
	assert.True(t, report.Changed())

	again := rules.ApplyAll(nodes)
	assert.False(t, again.Changed())
}

func TestLayerRules(t *testing.T) {
	t.Parallel()

	specs := []domain.LayerSpec{
		{Layer: domain.LayerEntities, Path: "src/Entities", Namespace: `App\Entities`},
		{Layer: domain.LayerUseCases, Path: "src/UseCases", Namespace: `App\UseCases\`},
		{Layer: domain.LayerServices},
	}

	rules := declaration.LayerRules(specs, `Acme\Contracts`)

	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2 (unconfigured layers are dropped)", len(rules))
	}
	assert.Equal(t, `Acme\Contracts\EntityInterface`, rules[0].Marker())
	assert.Equal(t, []string{`App\Entities`}, rules[0].Targets())
	assert.Equal(t, `Acme\Contracts\UseCaseInterface`, rules[1].Marker())
	assert.Equal(t, []string{`App\UseCases`}, rules[1].Targets())
}
