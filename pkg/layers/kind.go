package layers

import (
	"strings"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

// Kind classifies a node by capability.
type Kind int

const (
	// KindGroup is an intermediate node with no renderer, camera or actor
	// marker. It is also the fallback for anything unrecognized.
	KindGroup Kind = iota
	// KindRoot owns the layered actor marker.
	KindRoot
	// KindLayer owns a renderer.
	KindLayer
	// KindCamera owns a camera and is display-only.
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLayer:
		return "layer"
	case KindCamera:
		return "camera"
	default:
		return "group"
	}
}

// Action is the kind of a clickable affordance.
type Action int

const (
	// ActionNext makes the node the only visible branch among its siblings.
	ActionNext Action = iota
	// ActionPlus enables every renderer in the node's subtree.
	ActionPlus
	// ActionMinus disables every renderer in the node's subtree.
	ActionMinus
)

// Actions lists every action in slot order.
var Actions = []Action{ActionNext, ActionPlus, ActionMinus}

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPlus:
		return "plus"
	case ActionMinus:
		return "minus"
	default:
		return "unknown"
	}
}

// ParseAction parses "next", "plus" or "minus" (case-insensitive).
// "+" and "-" are accepted for plus and minus.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "n":
		return ActionNext, nil
	case "plus", "+":
		return ActionPlus, nil
	case "minus", "-":
		return ActionMinus, nil
	default:
		return 0, lderrors.New(lderrors.ErrCodeInvalidAction, "unknown action %q (want next, plus or minus)", s)
	}
}

// VisualState is how an affordance should be drawn. Hosts map it to a
// color or style.
type VisualState int

const (
	// StateNeutral is the resting style.
	StateNeutral VisualState = iota
	// StatePositive flags Minus when everything under the node is hidden.
	StatePositive
	// StateHighlighted lights up Next and Plus.
	StateHighlighted
)

func (s VisualState) String() string {
	switch s {
	case StatePositive:
		return "positive"
	case StateHighlighted:
		return "highlighted"
	default:
		return "neutral"
	}
}

// Affordance is one clickable control on a row. It is recomputed on every
// draw pass and never stored.
type Affordance struct {
	Action    Action
	State     VisualState
	Clickable bool
}
