package panel

import (
	"context"
	"time"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/observability"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// Slots is the number of icon slots on a decorated row.
const Slots = 4

// DefaultIconWidth is the slot width used when Options.IconWidth is unset.
const DefaultIconWidth = 2

// Rect is a row or icon rectangle in host units (cells or pixels).
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// MaxX returns the right edge of r.
func (r Rect) MaxX() int { return r.X + r.W }

// MaxY returns the bottom edge of r.
func (r Rect) MaxY() int { return r.Y + r.H }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Icon identifies a glyph the host knows how to draw.
type Icon int

const (
	IconPrefab Icon = iota
	IconFolder
	IconLayer
	IconCamera
	IconAddComposition
	IconNext
	IconPlus
	IconMinus
)

func (i Icon) String() string {
	switch i {
	case IconPrefab:
		return "prefab"
	case IconFolder:
		return "folder"
	case IconLayer:
		return "layer"
	case IconCamera:
		return "camera"
	case IconAddComposition:
		return "add-composition"
	case IconNext:
		return "next"
	case IconPlus:
		return "plus"
	case IconMinus:
		return "minus"
	default:
		return "unknown"
	}
}

// KindIcon returns the slot 0 icon for a node kind.
func KindIcon(k layers.Kind) Icon {
	switch k {
	case layers.KindRoot:
		return IconPrefab
	case layers.KindLayer:
		return IconLayer
	case layers.KindCamera:
		return IconCamera
	default:
		return IconFolder
	}
}

// ActionIcon returns the icon drawn for an affordance.
func ActionIcon(a layers.Action) Icon {
	switch a {
	case layers.ActionNext:
		return IconNext
	case layers.ActionPlus:
		return IconPlus
	default:
		return IconMinus
	}
}

// Slot returns the slot an icon occupies.
func Slot(i Icon) int {
	switch i {
	case IconNext, IconAddComposition:
		return 1
	case IconPlus:
		return 2
	case IconMinus:
		return 3
	default:
		return 0
	}
}

// SlotRect returns the rectangle of slot within row.
func SlotRect(row Rect, slot, iconWidth int) Rect {
	return Rect{
		X: row.MaxX() - (Slots-slot)*iconWidth,
		Y: row.Y,
		W: iconWidth,
		H: row.H,
	}
}

// Host is a hierarchy panel the overlay can decorate.
type Host interface {
	// ForEachVisibleRow calls fn once per visible row, top to bottom.
	ForEachVisibleRow(fn func(id scene.ID, row Rect))
	// DrawIcon draws icon at r and reports whether it was clicked this pass.
	DrawIcon(r Rect, icon Icon, state layers.VisualState) bool
}

// Options configures an Overlay.
type Options struct {
	// IconWidth is the width of one slot in host units.
	IconWidth int
}

// Overlay draws affordances for a controller onto a host.
type Overlay struct {
	ctrl      *layers.Controller
	iconWidth int
}

// New returns an overlay for ctrl.
func New(ctrl *layers.Controller, opts Options) *Overlay {
	w := opts.IconWidth
	if w <= 0 {
		w = DefaultIconWidth
	}
	return &Overlay{ctrl: ctrl, iconWidth: w}
}

// IconWidth returns the slot width in use.
func (o *Overlay) IconWidth() int { return o.iconWidth }

// Controller returns the underlying controller.
func (o *Overlay) Controller() *layers.Controller { return o.ctrl }

// Click is an icon the host reported as clicked during a pass, with the
// mutation already applied.
type Click struct {
	ID   scene.ID
	Icon Icon
	// Composition is set for IconAddComposition clicks.
	Composition *scene.CompositionEntry
}

// Result summarizes one draw pass.
type Result struct {
	Rows      int
	Decorated int
	Clicks    []Click
	// Redraw is true when a click changed the tree and the host should run
	// another pass to show the new state.
	Redraw bool
}

// Draw runs one pass over the host's visible rows. Clicks are applied as
// soon as the host reports them, so icons drawn later in the same pass,
// including the rest of the clicked row, see the new renderer state.
func (o *Overlay) Draw(ctx context.Context, host Host) Result {
	start := time.Now()
	var res Result

	host.ForEachVisibleRow(func(id scene.ID, row Rect) {
		res.Rows++
		r := o.ctrl.Row(id)
		if !r.Managed {
			return
		}
		res.Decorated++

		host.DrawIcon(o.slot(row, 0), KindIcon(r.Kind), layers.StateNeutral)

		if r.Kind == layers.KindRoot {
			if host.DrawIcon(o.slot(row, Slot(IconAddComposition)), IconAddComposition, layers.StateNeutral) {
				if entry, ok := o.ctrl.AddCompositionMap(ctx, id); ok {
					res.Clicks = append(res.Clicks, Click{ID: id, Icon: IconAddComposition, Composition: &entry})
					res.Redraw = true
				}
			}
		}

		clicked := false
		for _, a := range r.Affordances {
			icon := ActionIcon(a.Action)
			state := a.State
			if clicked {
				// an earlier icon in this row already changed the tree
				state = o.ctrl.VisualState(id, a.Action)
			}
			if !host.DrawIcon(o.slot(row, Slot(icon)), icon, state) || !a.Clickable {
				continue
			}
			o.ctrl.Activate(ctx, id, a.Action)
			clicked = true
			res.Clicks = append(res.Clicks, Click{ID: id, Icon: icon})
			res.Redraw = true
		}
	})

	observability.Panel().OnDrawPass(ctx, res.Rows, res.Decorated, time.Since(start))
	return res
}

func (o *Overlay) slot(row Rect, slot int) Rect {
	return SlotRect(row, slot, o.iconWidth)
}

// HitTest returns the icon slot under the point, if any. Hosts that receive
// pointer events use it to turn a position into a pending click.
func (o *Overlay) HitTest(row Rect, x, y int) (int, bool) {
	for slot := 0; slot < Slots; slot++ {
		if o.slot(row, slot).Contains(x, y) {
			return slot, true
		}
	}
	return 0, false
}
