package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

var (
	// ErrDuplicateID is returned by [Scene.Add] when a node with the same ID
	// is already part of the scene.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrForeignParent is returned by [Scene.Add] when the parent does not
	// belong to the scene.
	ErrForeignParent = errors.New("parent is not part of the scene")

	// ErrAttached is returned by [Scene.Add] when the node already has a
	// parent or is already a root.
	ErrAttached = errors.New("node is already attached")
)

// ID identifies a node. It is stable for the lifetime of the scene and
// survives a write/read round trip.
type ID = uuid.UUID

// NewID returns a fresh random node ID.
func NewID() ID { return uuid.New() }

// Renderer is the enabled flag of a single renderer. The zero value is a
// disabled renderer.
type Renderer struct {
	enabled bool
}

// NewRenderer returns a renderer in the given state.
func NewRenderer(enabled bool) *Renderer {
	return &Renderer{enabled: enabled}
}

// Enabled reports whether the renderer draws.
func (r *Renderer) Enabled() bool { return r.enabled }

// SetEnabled sets the renderer's enabled flag.
func (r *Renderer) SetEnabled(enabled bool) { r.enabled = enabled }

// CompositionEntry is one named composition stored on an actor.
type CompositionEntry struct {
	Key         string `json:"key" yaml:"key"`
	Composition string `json:"composition" yaml:"composition"`
}

// compositionKeyPrefix prefixes generated composition map keys.
const compositionKeyPrefix = "NewCompositionMap"

// Actor marks the root node of a layered actor.
type Actor struct {
	// Composition is the actor's current composition expression.
	Composition string
	// CompositionMap holds named compositions in insertion order.
	CompositionMap []CompositionEntry
}

// AddCompositionMap appends an entry holding a copy of the current
// composition. Its key is "NewCompositionMap<N>" where N starts at the new
// length of the map and increases until no existing entry uses the key.
func (a *Actor) AddCompositionMap() CompositionEntry {
	used := make(map[string]bool, len(a.CompositionMap))
	for _, e := range a.CompositionMap {
		used[e.Key] = true
	}

	n := len(a.CompositionMap) + 1
	key := fmt.Sprintf("%s%d", compositionKeyPrefix, n)
	for used[key] {
		n++
		key = fmt.Sprintf("%s%d", compositionKeyPrefix, n)
	}

	entry := CompositionEntry{Key: key, Composition: a.Composition}
	a.CompositionMap = append(a.CompositionMap, entry)
	return entry
}

// Node is a vertex of the scene hierarchy.
//
// The zero value is usable; [Scene.Add] assigns an ID when ID is the nil UUID.
type Node struct {
	ID       ID
	Name     string
	Actor    *Actor    // non-nil on layered actor roots
	Renderer *Renderer // non-nil on layers
	Camera   bool

	parent   *Node
	children []*Node
	attached bool
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's direct children in order. The slice must not
// be modified.
func (n *Node) Children() []*Node { return n.children }

// EnclosingActor returns the nearest layered actor root enclosing n: n
// itself when it carries the marker, otherwise the closest ancestor that does.
func (n *Node) EnclosingActor() (*Node, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Actor != nil {
			return cur, true
		}
	}
	return nil, false
}

// Path returns the slash-separated names from the root to n.
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.Name)
	}
	slices.Reverse(names)
	return strings.Join(names, lderrors.PathSeparator)
}

// String returns the node's path.
func (n *Node) String() string { return n.Path() }

// Capability summarizes what a node owns. It is the only input to
// classification.
type Capability struct {
	Actor    bool
	Renderer bool
	Camera   bool
	Children int
}

// Capability returns the node's capability summary.
func (n *Node) Capability() Capability {
	return Capability{
		Actor:    n.Actor != nil,
		Renderer: n.Renderer != nil,
		Camera:   n.Camera,
		Children: len(n.children),
	}
}

// Renderers returns every renderer in the subtree rooted at n, n's own
// first, in depth-first order.
func (n *Node) Renderers() []*Renderer {
	var out []*Renderer
	n.walk(0, func(c *Node, _ int) bool {
		if c.Renderer != nil {
			out = append(out, c.Renderer)
		}
		return true
	})
	return out
}

func (n *Node) walk(depth int, fn func(*Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(depth+1, fn) {
			return false
		}
	}
	return true
}

// Scene is a forest of nodes indexed by ID.
//
// The zero value is not usable; use [New].
type Scene struct {
	roots []*Node
	nodes map[ID]*Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{nodes: make(map[ID]*Node)}
}

// Add attaches n as the last child of parent, or as a new root when parent
// is nil. A nil ID is replaced with a fresh one.
func (s *Scene) Add(parent, n *Node) error {
	if n.attached {
		return fmt.Errorf("add %s: %w", n.Name, ErrAttached)
	}
	if parent != nil {
		if got, ok := s.nodes[parent.ID]; !ok || got != parent {
			return fmt.Errorf("add %s under %s: %w", n.Name, parent.Name, ErrForeignParent)
		}
	}
	if n.ID == uuid.Nil {
		n.ID = NewID()
	}
	if _, ok := s.nodes[n.ID]; ok {
		return fmt.Errorf("add %s (%s): %w", n.Name, n.ID, ErrDuplicateID)
	}

	s.nodes[n.ID] = n
	n.attached = true
	if parent == nil {
		s.roots = append(s.roots, n)
		return nil
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	return nil
}

// Roots returns the top-level nodes in order.
func (s *Scene) Roots() []*Node { return s.roots }

// Len returns the number of nodes in the scene.
func (s *Scene) Len() int { return len(s.nodes) }

// Node returns the node with the given ID, or nil.
func (s *Scene) Node(id ID) *Node { return s.nodes[id] }

// Walk visits every node depth-first in hierarchy order. Returning false
// from fn stops the walk.
func (s *Scene) Walk(fn func(n *Node, depth int) bool) {
	for _, r := range s.roots {
		if !r.walk(0, fn) {
			return
		}
	}
}

// Find resolves a slash-separated name path ("Hero/Body/Arm"). When several
// siblings share a name the first one in order wins.
func (s *Scene) Find(path string) (*Node, error) {
	segments, err := lderrors.ValidateNodePath(path)
	if err != nil {
		return nil, err
	}

	candidates := s.roots
	var found *Node
	for _, seg := range segments {
		found = nil
		for _, c := range candidates {
			if c.Name == seg {
				found = c
				break
			}
		}
		if found == nil {
			return nil, lderrors.New(lderrors.ErrCodeNodeNotFound, "no node at %q", path)
		}
		candidates = found.children
	}
	return found, nil
}

// =============================================================================
// Hierarchy access by ID
// =============================================================================

// Parent returns the ID of the node's parent. It reports false for roots
// and unknown IDs.
func (s *Scene) Parent(id ID) (ID, bool) {
	n := s.nodes[id]
	if n == nil || n.parent == nil {
		return uuid.Nil, false
	}
	return n.parent.ID, true
}

// Children returns the IDs of the node's direct children in order.
func (s *Scene) Children(id ID) []ID {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	ids := make([]ID, len(n.children))
	for i, c := range n.children {
		ids[i] = c.ID
	}
	return ids
}

// Capability returns the capability of the node with the given ID. Unknown
// IDs report an empty capability.
func (s *Scene) Capability(id ID) Capability {
	n := s.nodes[id]
	if n == nil {
		return Capability{}
	}
	return n.Capability()
}

// Renderers returns the renderers in the subtree of the node with the
// given ID, including its own.
func (s *Scene) Renderers(id ID) []*Renderer {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	return n.Renderers()
}

// Actor returns the actor marker of the node with the given ID, or nil.
func (s *Scene) Actor(id ID) *Actor {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	return n.Actor
}
