package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/panel"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - selection
	colorGreen  = lipgloss.Color("35")  // Green - plus highlighted
	colorYellow = lipgloss.Color("220") // Amber - next highlighted
	colorRed    = lipgloss.Color("167") // Soft red - minus positive
	colorWhite  = lipgloss.Color("255") // Bright white - names
	colorGray   = lipgloss.Color("245") // Gray - kind icons
	colorDim    = lipgloss.Color("240") // Dim gray - neutral icons
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHelp      = lipgloss.NewStyle().Foreground(colorDim)
	styleName      = lipgloss.NewStyle().Foreground(colorWhite)
	styleUnmanaged = lipgloss.NewStyle().Foreground(colorDim)
	styleCursor    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleStatus    = lipgloss.NewStyle().Foreground(colorGray)
	styleError     = lipgloss.NewStyle().Foreground(colorRed)

	styleKind    = lipgloss.NewStyle().Foreground(colorGray)
	styleNeutral = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Glyphs
// =============================================================================

var glyphs = map[panel.Icon]string{
	panel.IconPrefab:         "◆",
	panel.IconFolder:         "□",
	panel.IconLayer:          "■",
	panel.IconCamera:         "◎",
	panel.IconAddComposition: "*",
	panel.IconNext:           "»",
	panel.IconPlus:           "+",
	panel.IconMinus:          "-",
}

// iconStyle maps an icon and its visual state to a color. Next lights up
// yellow, Plus green, and a positive Minus red.
func iconStyle(icon panel.Icon, state layers.VisualState) lipgloss.Style {
	switch icon {
	case panel.IconPrefab, panel.IconFolder, panel.IconLayer, panel.IconCamera:
		return styleKind
	}
	switch {
	case icon == panel.IconNext && state == layers.StateHighlighted:
		return lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	case icon == panel.IconPlus && state == layers.StateHighlighted:
		return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	case icon == panel.IconMinus && state == layers.StatePositive:
		return lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	default:
		return styleNeutral
	}
}
