// Package layers implements the layer visibility controller.
//
// The controller decorates rows of a layered actor hierarchy. Given a node,
// it classifies it, computes the affordances the row offers, the visual
// state of each affordance, and applies the renderer mutation when one is
// clicked. It holds no state between calls: every answer is derived from
// the [Hierarchy] at call time, so there is nothing to invalidate after the
// tree changes.
//
// # Classification
//
// Classification is a pure function of capability, checked in order:
//
//	actor marker  → KindRoot
//	renderer      → KindLayer
//	camera        → KindCamera
//	anything else → KindGroup
//
// # Affordances
//
//	KindRoot:   Plus, Minus
//	KindGroup:  Next, Plus, Minus
//	KindLayer:  Next, Plus, Minus
//	KindCamera: none
//
// A node with no renderer anywhere in its subtree offers nothing.
//
// # Visual State
//
//	Plus  on root:          Highlighted when every renderer is enabled
//	Plus  on group/layer:   Highlighted when some renderer is enabled and
//	                        some sibling also has an enabled renderer
//	Minus:                  Positive when every renderer is disabled
//	Next:                   Highlighted when some renderer is enabled and no
//	                        sibling has one
//
// # Mutations
//
// Plus enables the node's renderers, Minus disables them. Next disables the
// renderers of every sibling and then enables the node's own, leaving its
// subtree the only visible branch at that level.
//
// Siblings are the other children of the node's parent, compared by
// [scene.ID]. Two siblings with the same name are still two siblings.
//
// # Concurrency
//
// A Controller is safe to share only if the Hierarchy is. Hosts serialize
// draw passes and clicks.
package layers
