package cli

import (
	"github.com/spf13/cobra"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// composeCommand creates the compose command, which appends a composition
// map entry to the layered actor enclosing a node.
func (c *CLI) composeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compose <scene> <path>",
		Short: "Add a composition map entry to a layered actor",
		Long: `Compose appends an entry holding a copy of the actor's current composition
to its composition map, the same as clicking the add icon on the actor's row.
Any node under the actor may be named. The new key is NewCompositionMap<N>,
where N is the first free number starting at the new map length.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSceneArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd)
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			n, err := resolveNode(s, args[1])
			if err != nil {
				return err
			}

			entry, ok := layers.New(s).AddCompositionMap(cmd.Context(), n.ID)
			if !ok {
				return lderrors.New(lderrors.ErrCodeInvalidAction, "%s is not inside a layered actor", n.Path())
			}

			dest := outputPath(args[0], output)
			if err := scene.WriteFile(s, dest); err != nil {
				return err
			}

			out.success("Added %s", entry.Key)
			out.keyValue("composition", entry.Composition)
			out.file(dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")
	return cmd
}
