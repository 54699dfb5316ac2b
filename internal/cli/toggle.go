package cli

import (
	"github.com/spf13/cobra"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// toggleCommand creates the toggle command, which applies one affordance to a
// node and writes the scene back.
func (c *CLI) toggleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "toggle <scene> <path> <next|plus|minus>",
		Short: "Apply a next, plus or minus click to a node",
		Long: `Toggle applies the mutation behind one of the panel's icons to the node at
the given hierarchy path, then writes the scene.

  next   enable the node's renderers and disable those of its siblings
  plus   enable every renderer under the node
  minus  disable every renderer under the node

The scene is rewritten in place unless -o is given. Paths are slash-separated
node names (Hero/Body/Arm); the first matching node is used.`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeSceneArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd)
			action, err := layers.ParseAction(args[2])
			if err != nil {
				return err
			}
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			n, err := resolveNode(s, args[1])
			if err != nil {
				return err
			}

			ctrl := layers.New(s)
			if !ctrl.Managed(n.ID) {
				return lderrors.New(lderrors.ErrCodeInvalidAction, "%s is not inside a layered actor", n.Path())
			}
			if !ctrl.Offers(n.ID, action) {
				return lderrors.New(lderrors.ErrCodeInvalidAction,
					"%s is not offered on %s (%s)", action, n.Path(), ctrl.Classify(n.ID))
			}

			before := countEnabled(s)
			ctrl.Activate(cmd.Context(), n.ID, action)
			after := countEnabled(s)

			dest := outputPath(args[0], output)
			if err := scene.WriteFile(s, dest); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("toggled",
				"node", n.Path(), "action", action, "enabled_before", before, "enabled_after", after)

			out.success("%s %s", action, n.Path())
			out.detail("%d of %d renderers enabled", after, len(allRenderers(s)))
			out.file(dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")
	return cmd
}

func allRenderers(s *scene.Scene) []*scene.Renderer {
	var out []*scene.Renderer
	for _, root := range s.Roots() {
		out = append(out, root.Renderers()...)
	}
	return out
}

func countEnabled(s *scene.Scene) int {
	n := 0
	for _, r := range allRenderers(s) {
		if r.Enabled() {
			n++
		}
	}
	return n
}
