package layers

import (
	"context"
	"testing"

	"github.com/matzehuels/layerdeck/pkg/observability"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// tree is a small builder for test hierarchies.
type tree struct {
	t     *testing.T
	s     *scene.Scene
	nodes map[string]*scene.Node
}

func newTree(t *testing.T) *tree {
	t.Helper()
	return &tree{t: t, s: scene.New(), nodes: map[string]*scene.Node{}}
}

func (tr *tree) add(parent string, n *scene.Node) *scene.Node {
	tr.t.Helper()
	var p *scene.Node
	if parent != "" {
		p = tr.nodes[parent]
		if p == nil {
			tr.t.Fatalf("unknown parent %q", parent)
		}
	}
	if err := tr.s.Add(p, n); err != nil {
		tr.t.Fatalf("add %s: %v", n.Name, err)
	}
	tr.nodes[n.Name] = n
	return n
}

func (tr *tree) root(name string) *scene.Node {
	return tr.add("", &scene.Node{Name: name, Actor: &scene.Actor{}})
}

func (tr *tree) group(parent, name string) *scene.Node {
	return tr.add(parent, &scene.Node{Name: name})
}

func (tr *tree) layer(parent, name string, enabled bool) *scene.Node {
	return tr.add(parent, &scene.Node{Name: name, Renderer: scene.NewRenderer(enabled)})
}

func (tr *tree) camera(parent, name string) *scene.Node {
	return tr.add(parent, &scene.Node{Name: name, Camera: true})
}

func (tr *tree) id(name string) scene.ID {
	tr.t.Helper()
	n := tr.nodes[name]
	if n == nil {
		tr.t.Fatalf("unknown node %q", name)
	}
	return n.ID
}

func (tr *tree) enabled(name string) bool {
	return tr.nodes[name].Renderer.Enabled()
}

func actions(affs []Affordance) []Action {
	out := make([]Action, len(affs))
	for i, a := range affs {
		out[i] = a.Action
	}
	return out
}

func equalActions(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Classification
// =============================================================================

func TestClassify(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Arm", true)
	tr.camera("Hero", "Cam")
	// Renderer wins over camera, actor wins over everything.
	tr.add("Hero", &scene.Node{Name: "LitCam", Camera: true, Renderer: scene.NewRenderer(true)})
	tr.add("Hero", &scene.Node{Name: "Nested", Actor: &scene.Actor{}, Renderer: scene.NewRenderer(true)})

	c := New(tr.s)
	tests := []struct {
		node string
		want Kind
	}{
		{"Hero", KindRoot},
		{"Body", KindGroup},
		{"Arm", KindLayer},
		{"Cam", KindCamera},
		{"LitCam", KindLayer},
		{"Nested", KindRoot},
	}

	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			id := tr.id(tt.node)
			got := c.Classify(id)
			if got != tt.want {
				t.Errorf("Classify(%s) = %v, want %v", tt.node, got, tt.want)
			}
			if again := c.Classify(id); again != got {
				t.Errorf("Classify(%s) not stable: %v then %v", tt.node, got, again)
			}
		})
	}
}

func TestClassifyUnknownIsGroup(t *testing.T) {
	c := New(scene.New())
	if got := c.Classify(scene.NewID()); got != KindGroup {
		t.Errorf("Classify(unknown) = %v, want %v", got, KindGroup)
	}
}

func TestManaged(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Arm", true)
	tr.group("", "Props")
	tr.layer("Props", "Lamp", true)

	c := New(tr.s)
	for name, want := range map[string]bool{
		"Hero": true, "Body": true, "Arm": true,
		"Props": false, "Lamp": false,
	} {
		if got := c.Managed(tr.id(name)); got != want {
			t.Errorf("Managed(%s) = %v, want %v", name, got, want)
		}
	}

	row := c.Row(tr.id("Lamp"))
	if row.Managed || len(row.Affordances) != 0 {
		t.Errorf("unmanaged Row = %+v, want no affordances", row)
	}
}

// =============================================================================
// Affordances
// =============================================================================

func TestAffordances(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Arm", true)
	tr.group("Hero", "Empty")
	tr.group("Empty", "Deeper")
	tr.camera("Hero", "Cam")

	c := New(tr.s)
	tests := []struct {
		node string
		want []Action
	}{
		{"Hero", []Action{ActionPlus, ActionMinus}},
		{"Body", []Action{ActionNext, ActionPlus, ActionMinus}},
		{"Arm", []Action{ActionNext, ActionPlus, ActionMinus}},
		{"Empty", nil},
		{"Deeper", nil},
		{"Cam", nil},
	}

	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			affs := c.Affordances(tr.id(tt.node))
			if got := actions(affs); !equalActions(got, tt.want) {
				t.Errorf("Affordances(%s) = %v, want %v", tt.node, got, tt.want)
			}
			for _, a := range affs {
				if !a.Clickable {
					t.Errorf("%s %v not clickable", tt.node, a.Action)
				}
			}
		})
	}
}

func TestRootWithoutChildrenOffersNothing(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")

	c := New(tr.s)
	if affs := c.Affordances(tr.id("Hero")); len(affs) != 0 {
		t.Errorf("Affordances(empty root) = %v, want none", actions(affs))
	}
}

func TestNoRenderersNeverOffered(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "A")
	tr.group("A", "B")
	tr.camera("B", "Cam")

	c := New(tr.s)
	for _, name := range []string{"Hero", "A", "B", "Cam"} {
		id := tr.id(name)
		for _, a := range Actions {
			if c.Offers(id, a) {
				t.Errorf("%s offers %v without renderers", name, a)
			}
			if s := c.VisualState(id, a); s != StateNeutral {
				t.Errorf("VisualState(%s, %v) = %v, want neutral", name, a, s)
			}
		}
	}
}

// =============================================================================
// Visual state
// =============================================================================

func TestVisualStatePlusOnRoot(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  VisualState
	}{
		{"all enabled", []bool{true, true, true}, StateHighlighted},
		{"one disabled", []bool{true, false, true}, StateNeutral},
		{"all disabled", []bool{false, false, false}, StateNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t)
			tr.root("Hero")
			for i, f := range tt.flags {
				tr.layer("Hero", string(rune('A'+i)), f)
			}
			c := New(tr.s)
			if got := c.VisualState(tr.id("Hero"), ActionPlus); got != tt.want {
				t.Errorf("VisualState(Hero, plus) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisualStatePlusOnGroupNeedsEnabledSibling(t *testing.T) {
	tests := []struct {
		name       string
		self, peer bool
		want       VisualState
	}{
		{"self and sibling enabled", true, true, StateHighlighted},
		{"only self enabled", true, false, StateNeutral},
		{"only sibling enabled", false, true, StateNeutral},
		{"nothing enabled", false, false, StateNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t)
			tr.root("Hero")
			tr.group("Hero", "Body")
			tr.layer("Body", "Torso", tt.self)
			tr.layer("Body", "Arm", false)
			tr.group("Hero", "Face")
			tr.layer("Face", "Eyes", tt.peer)

			c := New(tr.s)
			if got := c.VisualState(tr.id("Body"), ActionPlus); got != tt.want {
				t.Errorf("VisualState(Body, plus) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisualStateMinus(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Torso", false)
	tr.layer("Body", "Arm", false)
	tr.group("Hero", "Face")
	tr.layer("Face", "Eyes", true)

	c := New(tr.s)
	tests := []struct {
		node string
		want VisualState
	}{
		{"Body", StatePositive},
		{"Torso", StatePositive},
		{"Face", StateNeutral},
		{"Hero", StateNeutral},
	}
	for _, tt := range tests {
		if got := c.VisualState(tr.id(tt.node), ActionMinus); got != tt.want {
			t.Errorf("VisualState(%s, minus) = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestVisualStateNext(t *testing.T) {
	tests := []struct {
		name        string
		self, other bool
		want        VisualState
	}{
		{"exclusive", true, false, StateHighlighted},
		{"shared", true, true, StateNeutral},
		{"hidden", false, false, StateNeutral},
		{"other visible", false, true, StateNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t)
			tr.root("Hero")
			tr.group("Hero", "Body")
			tr.layer("Body", "L1", tt.self)
			tr.layer("Body", "L2", tt.other)

			c := New(tr.s)
			if got := c.VisualState(tr.id("L1"), ActionNext); got != tt.want {
				t.Errorf("VisualState(L1, next) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisualStateNextNotOnRoot(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.layer("Hero", "A", true)

	c := New(tr.s)
	if c.Offers(tr.id("Hero"), ActionNext) {
		t.Error("root should not offer next")
	}
	if got := c.VisualState(tr.id("Hero"), ActionNext); got != StateNeutral {
		t.Errorf("VisualState(Hero, next) = %v, want neutral", got)
	}
}

// Siblings sharing a name are still distinct nodes.
func TestSiblingsComparedByIdentity(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	first := tr.add("Body", &scene.Node{Name: "Arm", Renderer: scene.NewRenderer(true)})
	second := tr.add("Body", &scene.Node{Name: "Arm", Renderer: scene.NewRenderer(true)})

	c := New(tr.s)
	if got := c.SiblingsEnabled(first.ID); got != 1 {
		t.Errorf("SiblingsEnabled(first Arm) = %d, want 1", got)
	}
	if got := c.VisualState(first.ID, ActionNext); got != StateNeutral {
		t.Errorf("VisualState(first Arm, next) = %v, want neutral", got)
	}
	if got := c.VisualState(first.ID, ActionPlus); got != StateHighlighted {
		t.Errorf("VisualState(first Arm, plus) = %v, want highlighted", got)
	}

	c.Activate(context.Background(), first.ID, ActionNext)
	if !first.Renderer.Enabled() || second.Renderer.Enabled() {
		t.Errorf("after Next(first): first=%v second=%v, want true false",
			first.Renderer.Enabled(), second.Renderer.Enabled())
	}
}

// =============================================================================
// Mutations
// =============================================================================

func TestPlusOnRootEnablesEverything(t *testing.T) {
	tr := newTree(t)
	tr.root("Root")
	tr.layer("Root", "A", false)
	tr.layer("Root", "B", false)
	tr.layer("Root", "C", false)

	c := New(tr.s)
	c.Activate(context.Background(), tr.id("Root"), ActionPlus)

	for _, n := range []string{"A", "B", "C"} {
		if !tr.enabled(n) {
			t.Errorf("%s disabled after Plus(Root)", n)
		}
	}
	if got := c.VisualState(tr.id("Root"), ActionPlus); got != StateHighlighted {
		t.Errorf("VisualState(Root, plus) = %v, want highlighted", got)
	}
}

func TestPlusOnGroupLeavesSiblings(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Torso", false)
	tr.layer("Body", "Arm", false)
	tr.group("Hero", "Face")
	tr.layer("Face", "Eyes", false)

	c := New(tr.s)
	c.Activate(context.Background(), tr.id("Body"), ActionPlus)

	if !tr.enabled("Torso") || !tr.enabled("Arm") {
		t.Error("Body renderers should be enabled")
	}
	if tr.enabled("Eyes") {
		t.Error("sibling renderer should be untouched")
	}
}

func TestMinusIsIdempotent(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "Torso", true)
	tr.layer("Body", "Arm", false)
	tr.layer("Hero", "Face", true)

	c := New(tr.s)
	ctx := context.Background()
	for _, node := range []string{"Body", "Hero"} {
		for i := 0; i < 2; i++ {
			c.Activate(ctx, tr.id(node), ActionMinus)
			if got := c.VisualState(tr.id(node), ActionMinus); got != StatePositive {
				t.Errorf("pass %d: VisualState(%s, minus) = %v, want positive", i, node, got)
			}
		}
	}
	for _, n := range []string{"Torso", "Arm", "Face"} {
		if tr.enabled(n) {
			t.Errorf("%s still enabled", n)
		}
	}
}

func TestNextIsExclusive(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Parent")
	for _, g := range []string{"A", "B", "C"} {
		tr.group("Parent", g)
		tr.layer(g, g+"1", true)
		tr.layer(g, g+"2", true)
	}

	c := New(tr.s)
	c.Activate(context.Background(), tr.id("B"), ActionNext)

	for _, n := range []string{"A1", "A2", "C1", "C2"} {
		if tr.enabled(n) {
			t.Errorf("%s still enabled after Next(B)", n)
		}
	}
	for _, n := range []string{"B1", "B2"} {
		if !tr.enabled(n) {
			t.Errorf("%s disabled after Next(B)", n)
		}
	}
	if got := c.VisualState(tr.id("B"), ActionNext); got != StateHighlighted {
		t.Errorf("VisualState(B, next) = %v, want highlighted", got)
	}
}

func TestNextScenario(t *testing.T) {
	tr := newTree(t)
	tr.root("Root")
	tr.group("Root", "Group")
	tr.layer("Group", "L1", true)
	tr.layer("Group", "L2", true)

	c := New(tr.s)
	c.Activate(context.Background(), tr.id("L1"), ActionNext)

	if tr.enabled("L2") {
		t.Error("L2 should be disabled")
	}
	if !tr.enabled("L1") {
		t.Error("L1 should be enabled")
	}
	if got := c.VisualState(tr.id("L1"), ActionNext); got != StateHighlighted {
		t.Errorf("VisualState(L1, next) = %v, want highlighted", got)
	}
}

func TestPlusThenMinusLeavesAllDisabled(t *testing.T) {
	starts := [][]bool{
		{true, true},
		{false, false},
		{true, false},
	}
	for _, start := range starts {
		tr := newTree(t)
		tr.root("Hero")
		tr.group("Hero", "Body")
		tr.layer("Body", "A", start[0])
		tr.layer("Body", "B", start[1])

		c := New(tr.s)
		ctx := context.Background()
		c.Activate(ctx, tr.id("Body"), ActionPlus)
		c.Activate(ctx, tr.id("Body"), ActionMinus)

		if tr.enabled("A") || tr.enabled("B") {
			t.Errorf("start %v: renderers still enabled", start)
		}
	}
}

func TestActivateNotOfferedIsNoop(t *testing.T) {
	tr := newTree(t)
	tr.root("Hero")
	tr.group("Hero", "Body")
	tr.layer("Body", "A", true)
	tr.group("Hero", "Face")
	tr.layer("Face", "B", true)
	tr.group("Hero", "Empty")

	hooks := &recordingHooks{}
	observability.SetControllerHooks(hooks)
	defer observability.Reset()

	c := New(tr.s)
	ctx := context.Background()
	c.Activate(ctx, tr.id("Hero"), ActionNext)
	c.Activate(ctx, tr.id("Empty"), ActionNext)
	c.Activate(ctx, tr.id("Empty"), ActionMinus)

	if !tr.enabled("A") || !tr.enabled("B") {
		t.Error("no-op activations changed renderer state")
	}
	if hooks.calls != 0 {
		t.Errorf("hooks called %d times for no-ops", hooks.calls)
	}

	c.Activate(ctx, tr.id("Body"), ActionNext)
	if hooks.calls != 1 || hooks.lastAction != "next" || hooks.lastKind != "group" || hooks.touched != 2 {
		t.Errorf("hooks = %+v, want one next/group call touching 2", hooks)
	}
}

func TestAddCompositionMap(t *testing.T) {
	tr := newTree(t)
	hero := tr.add("", &scene.Node{Name: "Hero", Actor: &scene.Actor{Composition: "Body+Face"}})
	tr.group("Hero", "Body")
	tr.layer("Body", "Arm", true)
	tr.group("", "Props")

	c := New(tr.s)
	ctx := context.Background()

	entry, ok := c.AddCompositionMap(ctx, tr.id("Arm"))
	if !ok {
		t.Fatal("AddCompositionMap(Arm) should resolve the enclosing actor")
	}
	if entry.Key != "NewCompositionMap1" || entry.Composition != "Body+Face" {
		t.Errorf("entry = %+v", entry)
	}
	if len(hero.Actor.CompositionMap) != 1 {
		t.Errorf("composition map len = %d, want 1", len(hero.Actor.CompositionMap))
	}

	entry, _ = c.AddCompositionMap(ctx, tr.id("Hero"))
	if entry.Key != "NewCompositionMap2" {
		t.Errorf("second key = %q, want NewCompositionMap2", entry.Key)
	}

	if _, ok := c.AddCompositionMap(ctx, tr.id("Props")); ok {
		t.Error("AddCompositionMap outside an actor should report false")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"next", ActionNext, false},
		{"Plus", ActionPlus, false},
		{"+", ActionPlus, false},
		{" minus ", ActionMinus, false},
		{"-", ActionMinus, false},
		{"toggle", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAction(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type recordingHooks struct {
	calls      int
	lastAction string
	lastKind   string
	touched    int
}

func (h *recordingHooks) OnActivate(_ context.Context, action, kind string, touched int) {
	h.calls++
	h.lastAction = action
	h.lastKind = kind
	h.touched = touched
}

func (h *recordingHooks) OnCompositionAdded(context.Context, string) {}
