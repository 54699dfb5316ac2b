package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/pkg/layers"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleHighlighted = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	stylePositive    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Printer
// =============================================================================

// printer writes styled status lines to a command's output.
type printer struct {
	w io.Writer
}

func newPrinter(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout()}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// success prints a success message.
func (p printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// info prints an info/status message.
func (p printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed detail line.
func (p printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints an output file line.
func (p printer) file(path string) {
	p.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// keyValue prints a labeled value.
func (p printer) keyValue(key, value string) {
	p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// stats prints scene statistics on a single line.
func (p printer) stats(nodeCount, managed int, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d managed", managed)),
		statusStyle.Render(status),
	}
	p.line("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// =============================================================================
// Affordance States
// =============================================================================

// renderState renders an affordance state the way the terminal panel colors
// its icons.
func renderState(s layers.VisualState) string {
	switch s {
	case layers.StateHighlighted:
		return styleHighlighted.Render(s.String())
	case layers.StatePositive:
		return stylePositive.Render(s.String())
	default:
		return StyleDim.Render(s.String())
	}
}
