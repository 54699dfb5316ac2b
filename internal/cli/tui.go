package cli

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/internal/tui"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// tuiCommand creates the tui command, the interactive terminal panel.
func (c *CLI) tuiCommand() *cobra.Command {
	var watch bool
	var iconWidth int

	cmd := &cobra.Command{
		Use:   "tui <scene>",
		Short: "Browse and toggle a scene in the terminal panel",
		Long: `Open the scene hierarchy as a collapsible tree with the panel's icons at
the right edge of each row. Click an icon, or use the keys:

  n  next     +  plus     -  minus     a  add composition map
  ctrl+s save   r reload   q quit

With --watch the scene is reloaded whenever the file changes on disk.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSceneArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := loadScene(path)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("icon-width") {
				iconWidth = c.Config.Panel.IconWidth
			}
			return c.runTUI(cmd.Context(), path, s, iconWidth, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the scene when the file changes")
	cmd.Flags().IntVar(&iconWidth, "icon-width", 0, "icon slot width in cells (default from config)")
	return cmd
}

func (c *CLI) runTUI(ctx context.Context, path string, s *scene.Scene, iconWidth int, watch bool) error {
	logger := loggerFromContext(ctx)

	model := tui.New(ctx, s, tui.Options{
		IconWidth: iconWidth,
		Title:     filepath.Base(path),
		Load:      func() (*scene.Scene, error) { return scene.ReadFile(path) },
		Save:      func(s *scene.Scene) error { return scene.WriteFile(s, path) },
		Logger:    logger,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if watch {
		w, err := tui.NewWatcher(path, tui.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		defer w.Close()

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go w.Run(watchCtx,
			func() { p.Send(tui.ReloadMsg{}) },
			func(err error) { p.Send(tui.WatchErrMsg{Err: err}) },
		)
	}

	_, err := p.Run()
	return err
}
