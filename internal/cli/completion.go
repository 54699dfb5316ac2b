package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for layerdeck.

Completions cover scene files, node paths read from the scene, and the
actions a node offers.

Bash:
  $ source <(layerdeck completion bash)

Zsh:
  $ layerdeck completion zsh > "${fpath[1]}/_layerdeck"

Fish:
  $ layerdeck completion fish > ~/.config/fish/completions/layerdeck.fish

PowerShell:
  PS> layerdeck completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// sceneExts are the file extensions offered for scene arguments.
var sceneExts = []string{"json", "yaml", "yml"}

// completeSceneArgs completes "<scene> [path] [action]" arguments. depth is
// the number of arguments the command takes: 1 for the scene only, 2 to add
// node paths, 3 to add the actions offered on the chosen node.
func completeSceneArgs(depth int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return sceneExts, cobra.ShellCompDirectiveFilterFileExt
		}
		if len(args) >= depth {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		s, err := scene.ReadFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		if len(args) == 1 {
			return nodePaths(s, toComplete), cobra.ShellCompDirectiveNoFileComp
		}

		n, err := s.Find(args[1])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return offeredActions(layers.New(s), n.ID), cobra.ShellCompDirectiveNoFileComp
	}
}

// nodePaths lists the paths of managed nodes starting with prefix.
func nodePaths(s *scene.Scene, prefix string) []string {
	ctrl := layers.New(s)
	var out []string
	s.Walk(func(n *scene.Node, _ int) bool {
		if p := n.Path(); ctrl.Managed(n.ID) && strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
		return true
	})
	return out
}

func offeredActions(ctrl *layers.Controller, id scene.ID) []string {
	var out []string
	for _, a := range layers.Actions {
		if ctrl.Offers(id, a) {
			out = append(out, a.String())
		}
	}
	return out
}
