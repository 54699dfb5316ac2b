package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// inspectCommand creates the inspect command for printing the decorated
// hierarchy of a scene.
func (c *CLI) inspectCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Show the layered actor rows of a scene and their icon states",
		Long: `Inspect prints every row of a scene hierarchy with its kind, renderer state
and the state of the next, plus and minus icons the panel would draw.

Rows outside a layered actor are skipped unless --all is given.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSceneArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd)
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("loaded scene", "file", args[0], "nodes", s.Len())

			rows, managed := inspectRows(s, all)
			out.line(inspectTable(rows))
			out.stats(s.Len(), managed, false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include rows outside layered actors")
	return cmd
}

// inspectRows returns the table rows of s in hierarchy order and the number
// of managed rows.
func inspectRows(s *scene.Scene, all bool) ([][]string, int) {
	ctrl := layers.New(s)
	var rows [][]string
	managed := 0

	s.Walk(func(n *scene.Node, depth int) bool {
		r := ctrl.Row(n.ID)
		if r.Managed {
			managed++
		} else if !all {
			return true
		}

		states := map[layers.Action]string{}
		for _, a := range r.Affordances {
			states[a.Action] = renderState(a.State)
		}

		kind := r.Kind.String()
		if !r.Managed {
			kind = StyleDim.Render("-")
		}
		rows = append(rows, []string{
			strings.Repeat("  ", depth) + n.Name,
			kind,
			rendererState(n),
			states[layers.ActionNext],
			states[layers.ActionPlus],
			states[layers.ActionMinus],
		})
		return true
	})
	return rows, managed
}

func rendererState(n *scene.Node) string {
	if n.Renderer == nil {
		return ""
	}
	if n.Renderer.Enabled() {
		return "on"
	}
	return StyleDim.Render("off")
}

func inspectTable(rows [][]string) string {
	headerStyle := StyleTitle.Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Kind", "Renderer", "Next", "Plus", "Minus").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
