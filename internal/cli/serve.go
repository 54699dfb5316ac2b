package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/internal/server"
	"github.com/matzehuels/layerdeck/pkg/observability"
	"github.com/matzehuels/layerdeck/pkg/observability/prom"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// serveCommand creates the serve command, the HTTP panel.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var save bool

	cmd := &cobra.Command{
		Use:   "serve <scene>",
		Short: "Serve the panel over HTTP",
		Long: `Serve exposes the panel as a JSON API:

  GET  /api/rows                 rows with icon states
  POST /api/nodes/{id}/{action}  next, plus, minus or composition
  GET  /api/scene                the scene file
  GET  /api/diagram              Graphviz DOT of the hierarchy
  GET  /metrics                  Prometheus metrics

Clicks change the scene in memory. With --save every applied click is
written back to the scene file.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSceneArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd)
			path := args[0]
			s, err := loadScene(path)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			hooks, err := prom.New(reg)
			if err != nil {
				return err
			}
			observability.SetControllerHooks(hooks)
			observability.SetPanelHooks(hooks)
			defer observability.Reset()

			opts := server.Options{
				IconWidth: c.Config.Panel.IconWidth,
				Gatherer:  reg,
				Logger:    loggerFromContext(cmd.Context()),
			}
			if save {
				opts.Save = func(s *scene.Scene) error { return scene.WriteFile(s, path) }
			}

			out.info("Serving %s", StyleValue.Render(path))
			out.keyValue("address", "http://"+addr)
			return server.New(s, opts).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "write the scene back after every click")
	return cmd
}
