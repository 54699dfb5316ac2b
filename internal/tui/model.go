// Package tui is the terminal hierarchy panel.
//
// The [Model] is a bubbletea model that shows a scene as an indented,
// collapsible tree and implements [panel.Host]: every update runs one
// overlay draw pass over the visible rows, and the icons the pass draws are
// what the view shows. Mouse clicks are hit-tested against the icon slots;
// the n, +, - and a keys synthesize a click on the matching slot of the
// cursor row, so both paths go through the same overlay dispatch.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/panel"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

const (
	// headerLines is the number of lines above the first row.
	headerLines = 3
	// footerLines is the number of lines below the last row.
	footerLines = 2

	defaultWidth  = 80
	defaultHeight = 20
	minHeight     = 3
)

// Options configures a Model.
type Options struct {
	// IconWidth is the width of one icon slot in cells.
	IconWidth int
	// Title is shown above the tree.
	Title string
	// Load re-reads the scene. Nil disables reloading.
	Load func() (*scene.Scene, error)
	// Save persists the scene. Nil disables saving.
	Save func(*scene.Scene) error
	// Logger receives reload and click events. Defaults to a discarding logger.
	Logger *log.Logger
}

// ReloadMsg asks the model to re-read its scene through Options.Load.
type ReloadMsg struct{}

// WatchErrMsg reports a file watcher failure.
type WatchErrMsg struct{ Err error }

type row struct {
	node  *scene.Node
	depth int
}

type glyph struct {
	icon  panel.Icon
	state layers.VisualState
	set   bool
}

// pendingClick is a click waiting for the next draw pass. Keyboard clicks
// only fire on the icon they name; mouse clicks fire on whatever is there.
type pendingClick struct {
	x, y int
	icon panel.Icon
	any  bool
}

// Model is the bubbletea model of the terminal panel.
type Model struct {
	ctx     context.Context
	opts    Options
	logger  *log.Logger
	scene   *scene.Scene
	overlay *panel.Overlay

	collapsed map[scene.ID]bool
	rows      []row
	cursor    int
	offset    int
	width     int
	height    int

	frame    map[int]*[panel.Slots]glyph
	drawLine int
	pending  *pendingClick

	status string
	err    error
}

// New returns a model showing s. Every node starts expanded.
func New(ctx context.Context, s *scene.Scene, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Model{
		ctx:       ctx,
		opts:      opts,
		logger:    logger,
		collapsed: map[scene.ID]bool{},
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.setScene(s)
	return m
}

// Scene returns the scene currently shown.
func (m *Model) Scene() *scene.Scene { return m.scene }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

// Selected returns the node under the cursor, or nil for an empty scene.
func (m *Model) Selected() *scene.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m *Model) setScene(s *scene.Scene) {
	selected := m.Selected()
	m.collapsed = carryCollapsed(m.scene, s, m.collapsed)

	m.scene = s
	m.overlay = panel.New(layers.New(s), panel.Options{IconWidth: m.opts.IconWidth})
	m.flatten()

	m.cursor = 0
	if selected != nil {
		m.cursor = m.rowIndex(selected)
	}
	m.scroll()
	m.redraw()
}

// rowIndex finds the row showing n by id, falling back to the first row with
// the same path when n's id is not in the current scene.
func (m *Model) rowIndex(n *scene.Node) int {
	path := n.Path()
	byPath := -1
	for i, r := range m.rows {
		if r.node.ID == n.ID {
			return i
		}
		if byPath < 0 && r.node.Path() == path {
			byPath = i
		}
	}
	return max(byPath, 0)
}

// carryCollapsed maps the collapse state of prev onto next. Nodes keep their
// state by id; a collapsed node whose id is gone from next is matched by path.
func carryCollapsed(prev, next *scene.Scene, collapsed map[scene.ID]bool) map[scene.ID]bool {
	out := map[scene.ID]bool{}
	if prev == nil {
		return out
	}
	lost := map[string]bool{}
	for id := range collapsed {
		if next.Node(id) != nil {
			out[id] = true
		} else if n := prev.Node(id); n != nil {
			lost[n.Path()] = true
		}
	}
	if len(lost) > 0 {
		next.Walk(func(n *scene.Node, _ int) bool {
			if lost[n.Path()] {
				out[n.ID] = true
			}
			return true
		})
	}
	return out
}

// flatten rebuilds the visible rows, skipping the children of collapsed nodes.
func (m *Model) flatten() {
	m.rows = m.rows[:0]
	var visit func(n *scene.Node, depth int)
	visit = func(n *scene.Node, depth int) {
		m.rows = append(m.rows, row{node: n, depth: depth})
		if m.collapsed[n.ID] {
			return
		}
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	for _, r := range m.scene.Roots() {
		visit(r, 0)
	}
}

// =============================================================================
// panel.Host
// =============================================================================

// ForEachVisibleRow implements [panel.Host]. Row rectangles are in screen
// cells relative to the first row line.
func (m *Model) ForEachVisibleRow(fn func(id scene.ID, row panel.Rect)) {
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		m.drawLine = i - m.offset
		fn(m.rows[i].node.ID, m.rowRect(m.drawLine))
	}
}

// DrawIcon implements [panel.Host].
func (m *Model) DrawIcon(r panel.Rect, icon panel.Icon, state layers.VisualState) bool {
	slots := m.frame[m.drawLine]
	if slots == nil {
		slots = &[panel.Slots]glyph{}
		m.frame[m.drawLine] = slots
	}
	slots[panel.Slot(icon)] = glyph{icon: icon, state: state, set: true}

	p := m.pending
	if p == nil || !r.Contains(p.x, p.y) {
		return false
	}
	if !p.any && p.icon != icon {
		return false
	}
	m.pending = nil
	return true
}

func (m *Model) rowRect(line int) panel.Rect {
	return panel.Rect{X: 0, Y: line, W: m.width, H: 1}
}

// redraw runs a draw pass, consuming any pending click. A pass that applied
// a click is followed by a second one so the frame shows the new state.
func (m *Model) redraw() panel.Result {
	m.frame = map[int]*[panel.Slots]glyph{}
	res := m.overlay.Draw(m.ctx, m)
	m.pending = nil
	if res.Redraw {
		m.report(res)
		m.frame = map[int]*[panel.Slots]glyph{}
		m.overlay.Draw(m.ctx, m)
	}
	return res
}

func (m *Model) report(res panel.Result) {
	for _, c := range res.Clicks {
		n := m.scene.Node(c.ID)
		if n == nil {
			continue
		}
		if c.Composition != nil {
			m.status = fmt.Sprintf("added %s to %s", c.Composition.Key, n.Path())
		} else {
			m.status = fmt.Sprintf("%s %s", c.Icon, n.Path())
		}
		m.err = nil
		m.logger.Debug("applied", "icon", c.Icon, "node", n.Path())
	}
}

// =============================================================================
// tea.Model
// =============================================================================

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-headerLines-footerLines, minHeight)
		m.scroll()
		m.redraw()
	case ReloadMsg:
		m.reload()
	case WatchErrMsg:
		m.err = msg.Err
		m.status = "watch: " + msg.Err.Error()
		m.logger.Warn("watch failed", "err", msg.Err)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.height)
	case "pgdown":
		m.move(m.height)
	case "right", "l":
		m.setCollapsed(false)
	case "left", "h":
		m.collapseOrParent()
	case "enter", "tab":
		if n := m.Selected(); n != nil {
			m.setCollapsed(!m.collapsed[n.ID])
		}
	case "n":
		m.clickCursor(panel.IconNext)
	case "+", "=":
		m.clickCursor(panel.IconPlus)
	case "-":
		m.clickCursor(panel.IconMinus)
	case "a":
		m.clickCursor(panel.IconAddComposition)
	case "r":
		m.reload()
	case "ctrl+s":
		m.save()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.move(-1)
		return
	case tea.MouseButtonWheelDown:
		m.move(1)
		return
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}

	line := msg.Y - headerLines
	if line < 0 || m.offset+line >= len(m.rows) || line >= m.height {
		return
	}
	m.cursor = m.offset + line
	if _, ok := m.overlay.HitTest(m.rowRect(line), msg.X, line); ok {
		m.pending = &pendingClick{x: msg.X, y: line, any: true}
	}
	m.redraw()
}

// clickCursor synthesizes a click on icon in the cursor row.
func (m *Model) clickCursor(icon panel.Icon) {
	n := m.Selected()
	if n == nil {
		return
	}
	line := m.cursor - m.offset
	r := panel.SlotRect(m.rowRect(line), panel.Slot(icon), m.overlay.IconWidth())
	m.pending = &pendingClick{x: r.X, y: line, icon: icon}
	if res := m.redraw(); len(res.Clicks) == 0 {
		m.status = fmt.Sprintf("%s not available on %s", icon, n.Path())
	}
}

func (m *Model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)-1))
	m.scroll()
	m.redraw()
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-1))
}

func (m *Model) setCollapsed(collapsed bool) {
	n := m.Selected()
	if n == nil || len(n.Children()) == 0 {
		return
	}
	if collapsed {
		m.collapsed[n.ID] = true
	} else {
		delete(m.collapsed, n.ID)
	}
	m.flatten()
	m.scroll()
	m.redraw()
}

func (m *Model) collapseOrParent() {
	n := m.Selected()
	if n == nil {
		return
	}
	if len(n.Children()) > 0 && !m.collapsed[n.ID] {
		m.setCollapsed(true)
		return
	}
	p := n.Parent()
	if p == nil {
		return
	}
	for i, r := range m.rows {
		if r.node == p {
			m.cursor = i
			break
		}
	}
	m.scroll()
	m.redraw()
}

func (m *Model) reload() {
	if m.opts.Load == nil {
		m.status = "reload unavailable"
		return
	}
	s, err := m.opts.Load()
	if err != nil {
		m.err = err
		m.status = "reload: " + err.Error()
		m.logger.Warn("reload failed", "err", err)
		return
	}
	m.err = nil
	m.setScene(s)
	m.status = fmt.Sprintf("reloaded %d nodes", s.Len())
	m.logger.Debug("reloaded", "nodes", s.Len())
}

func (m *Model) save() {
	if m.opts.Save == nil {
		m.status = "save unavailable"
		return
	}
	if err := m.opts.Save(m.scene); err != nil {
		m.err = err
		m.status = "save: " + err.Error()
		return
	}
	m.err = nil
	m.status = "saved"
}

// =============================================================================
// View
// =============================================================================

func (m *Model) View() string {
	var b strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "Layers"
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("↑/↓ move  ←/→ fold  n next  + show  - hide  a add map  r reload  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styleHelp.Render("  (empty scene)"))
		b.WriteString("\n")
	}

	iw := m.overlay.IconWidth()
	nameWidth := max(m.width-panel.Slots*iw, 0)
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i, nameWidth, iw))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(styleError.Render(m.status))
	} else {
		b.WriteString(styleStatus.Render(m.status))
	}
	return b.String()
}

func (m *Model) renderRow(i, nameWidth, iw int) string {
	r := m.rows[i]
	n := r.node

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}
	fold := "  "
	if len(n.Children()) > 0 {
		if m.collapsed[n.ID] {
			fold = "▸ "
		} else {
			fold = "▾ "
		}
	}
	label := truncate(marker+strings.Repeat("  ", r.depth)+fold+n.Name, nameWidth)
	label += strings.Repeat(" ", nameWidth-len([]rune(label)))

	style := styleName
	switch {
	case i == m.cursor:
		style = styleCursor
	case !m.overlay.Controller().Managed(n.ID):
		style = styleUnmanaged
	}

	var b strings.Builder
	b.WriteString(style.Render(label))
	slots := m.frame[i-m.offset]
	for s := 0; s < panel.Slots; s++ {
		if slots == nil || !slots[s].set {
			b.WriteString(strings.Repeat(" ", iw))
			continue
		}
		g := slots[s]
		cell := glyphs[g.icon] + strings.Repeat(" ", max(iw-1, 0))
		b.WriteString(iconStyle(g.icon, g.state).Render(cell))
	}
	return b.String()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
