package layers

import (
	"context"

	"github.com/matzehuels/layerdeck/pkg/observability"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// Hierarchy is the host scene graph the controller reads and mutates.
// [*scene.Scene] implements it.
type Hierarchy interface {
	// Parent returns the parent of id, or false for roots.
	Parent(id scene.ID) (scene.ID, bool)
	// Children returns the direct children of id in order.
	Children(id scene.ID) []scene.ID
	// Capability reports what id owns.
	Capability(id scene.ID) scene.Capability
	// Renderers returns every renderer in the subtree of id, its own included.
	Renderers(id scene.ID) []*scene.Renderer
	// Actor returns the actor marker of id, or nil.
	Actor(id scene.ID) *scene.Actor
}

// Controller computes affordances and applies toggles over a Hierarchy.
type Controller struct {
	tree Hierarchy
}

// New returns a controller over tree.
func New(tree Hierarchy) *Controller {
	return &Controller{tree: tree}
}

// Classify returns the node's kind. It never fails; unknown nodes are groups.
func (c *Controller) Classify(id scene.ID) Kind {
	cp := c.tree.Capability(id)
	switch {
	case cp.Actor:
		return KindRoot
	case cp.Renderer:
		return KindLayer
	case cp.Camera:
		return KindCamera
	default:
		return KindGroup
	}
}

// Managed reports whether id is a layered actor root or lies beneath one.
// Rows outside any actor are not decorated.
func (c *Controller) Managed(id scene.ID) bool {
	_, ok := c.actorRoot(id)
	return ok
}

func (c *Controller) actorRoot(id scene.ID) (scene.ID, bool) {
	for cur, ok := id, true; ok; cur, ok = c.tree.Parent(cur) {
		if c.tree.Capability(cur).Actor {
			return cur, true
		}
	}
	return scene.ID{}, false
}

// actionsFor lists the actions a kind offers, in slot order.
func actionsFor(k Kind) []Action {
	switch k {
	case KindRoot:
		return []Action{ActionPlus, ActionMinus}
	case KindGroup, KindLayer:
		return []Action{ActionNext, ActionPlus, ActionMinus}
	default:
		return nil
	}
}

// Offers reports whether the node shows the given affordance.
func (c *Controller) Offers(id scene.ID, a Action) bool {
	if len(c.tree.Renderers(id)) == 0 {
		return false
	}
	for _, offered := range actionsFor(c.Classify(id)) {
		if offered == a {
			return true
		}
	}
	return false
}

// Affordances returns the node's affordances in slot order. Nodes without
// any renderer in their subtree get none.
func (c *Controller) Affordances(id scene.ID) []Affordance {
	if len(c.tree.Renderers(id)) == 0 {
		return nil
	}
	actions := actionsFor(c.Classify(id))
	out := make([]Affordance, 0, len(actions))
	for _, a := range actions {
		out = append(out, Affordance{
			Action:    a,
			State:     c.VisualState(id, a),
			Clickable: true,
		})
	}
	return out
}

// VisualState returns how the affordance should be drawn. Affordances the
// node does not offer are neutral.
func (c *Controller) VisualState(id scene.ID, a Action) VisualState {
	if !c.Offers(id, a) {
		return StateNeutral
	}
	renderers := c.tree.Renderers(id)

	switch a {
	case ActionPlus:
		if c.Classify(id) == KindRoot {
			if allEnabled(renderers) {
				return StateHighlighted
			}
			return StateNeutral
		}
		if anyEnabled(renderers) && c.SiblingsEnabled(id) > 0 {
			return StateHighlighted
		}
	case ActionMinus:
		if noneEnabled(renderers) {
			return StatePositive
		}
	case ActionNext:
		if anyEnabled(renderers) && c.SiblingsEnabled(id) == 0 {
			return StateHighlighted
		}
	}
	return StateNeutral
}

// SiblingsEnabled counts the siblings of id with at least one enabled
// renderer in their subtree. Roots have no siblings.
func (c *Controller) SiblingsEnabled(id scene.ID) int {
	count := 0
	for _, sib := range c.siblings(id) {
		if anyEnabled(c.tree.Renderers(sib)) {
			count++
		}
	}
	return count
}

// siblings returns the other children of id's parent, by identity.
func (c *Controller) siblings(id scene.ID) []scene.ID {
	parent, ok := c.tree.Parent(id)
	if !ok {
		return nil
	}
	var out []scene.ID
	for _, child := range c.tree.Children(parent) {
		if child != id {
			out = append(out, child)
		}
	}
	return out
}

// Row is everything a host needs to decorate a single row.
type Row struct {
	ID          scene.ID
	Kind        Kind
	Managed     bool
	Affordances []Affordance
}

// Row summarizes id. Unmanaged rows carry no affordances.
func (c *Controller) Row(id scene.ID) Row {
	r := Row{ID: id, Kind: c.Classify(id), Managed: c.Managed(id)}
	if r.Managed {
		r.Affordances = c.Affordances(id)
	}
	return r
}

// Activate applies the affordance's mutation. Affordances the node does not
// offer, and nodes without renderers, are left untouched.
func (c *Controller) Activate(ctx context.Context, id scene.ID, a Action) {
	if !c.Offers(id, a) {
		return
	}

	touched := 0
	switch a {
	case ActionPlus:
		touched = setAll(c.tree.Renderers(id), true)
	case ActionMinus:
		touched = setAll(c.tree.Renderers(id), false)
	case ActionNext:
		for _, sib := range c.siblings(id) {
			touched += setAll(c.tree.Renderers(sib), false)
		}
		touched += setAll(c.tree.Renderers(id), true)
	}

	observability.Controller().OnActivate(ctx, a.String(), c.Classify(id).String(), touched)
}

// AddCompositionMap appends a generated entry to the composition map of the
// actor enclosing id. It reports false when id is not managed.
func (c *Controller) AddCompositionMap(ctx context.Context, id scene.ID) (scene.CompositionEntry, bool) {
	root, ok := c.actorRoot(id)
	if !ok {
		return scene.CompositionEntry{}, false
	}
	actor := c.tree.Actor(root)
	if actor == nil {
		return scene.CompositionEntry{}, false
	}
	entry := actor.AddCompositionMap()
	observability.Controller().OnCompositionAdded(ctx, entry.Key)
	return entry, true
}

// =============================================================================
// Renderer helpers
// =============================================================================

func anyEnabled(rs []*scene.Renderer) bool {
	for _, r := range rs {
		if r.Enabled() {
			return true
		}
	}
	return false
}

func allEnabled(rs []*scene.Renderer) bool {
	for _, r := range rs {
		if !r.Enabled() {
			return false
		}
	}
	return true
}

func noneEnabled(rs []*scene.Renderer) bool {
	return !anyEnabled(rs)
}

// setAll writes enabled to every renderer and returns how many it wrote.
func setAll(rs []*scene.Renderer, enabled bool) int {
	for _, r := range rs {
		r.SetEnabled(enabled)
	}
	return len(rs)
}
