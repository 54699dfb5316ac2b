package server

import (
	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/panel"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// RowView is one decorated row as served by the API.
type RowView struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Depth   int        `json:"depth"`
	Kind    string     `json:"kind"`
	Managed bool       `json:"managed"`
	Icons   []IconView `json:"icons,omitempty"`
}

// IconView is one icon drawn on a row.
type IconView struct {
	Icon  string     `json:"icon"`
	Slot  int        `json:"slot"`
	State string     `json:"state"`
	Rect  panel.Rect `json:"rect"`
}

// target is a click the next pass should report.
type target struct {
	id   scene.ID
	icon panel.Icon
}

// rowHost presents every node of the scene as a visible row, in tree order.
// Rows are rowWidth units wide and one unit tall.
type rowHost struct {
	scene    *scene.Scene
	ctrl     *layers.Controller
	rowWidth int
	click    *target

	rows    []RowView
	current *RowView
	clicked bool
}

func (h *rowHost) ForEachVisibleRow(fn func(id scene.ID, row panel.Rect)) {
	h.rows = h.rows[:0]
	y := 0
	h.scene.Walk(func(n *scene.Node, depth int) bool {
		h.rows = append(h.rows, RowView{
			ID:      n.ID.String(),
			Name:    n.Name,
			Path:    n.Path(),
			Depth:   depth,
			Kind:    h.ctrl.Classify(n.ID).String(),
			Managed: h.ctrl.Managed(n.ID),
		})
		h.current = &h.rows[len(h.rows)-1]
		fn(n.ID, panel.Rect{X: 0, Y: y, W: h.rowWidth, H: 1})
		y++
		return true
	})
	h.current = nil
}

func (h *rowHost) DrawIcon(r panel.Rect, icon panel.Icon, state layers.VisualState) bool {
	if h.current == nil {
		return false
	}
	h.current.Icons = append(h.current.Icons, IconView{
		Icon:  icon.String(),
		Slot:  panel.Slot(icon),
		State: state.String(),
		Rect:  r,
	})
	if h.click == nil || h.clicked || h.click.icon != icon || h.current.ID != h.click.id.String() {
		return false
	}
	h.clicked = true
	return true
}
