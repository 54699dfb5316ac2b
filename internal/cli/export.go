package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerdeck/pkg/cache"
	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
	"github.com/matzehuels/layerdeck/pkg/render/dot"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// exportCommand creates the export command for hierarchy diagrams.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		rankDir  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "export <scene>",
		Short: "Export the hierarchy as a Graphviz diagram",
		Long: `Export writes the scene hierarchy as Graphviz DOT source or a rendered SVG.
Nodes are styled by kind; disabled layers are dashed and rows outside a
layered actor are grayed out.

SVG output is cached by the hash of the DOT source. Use --no-cache to
render fresh.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSceneArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatDOT && format != formatSVG {
				return lderrors.New(lderrors.ErrCodeInvalidFormat, "unknown format %q (want dot or svg)", format)
			}
			if !cmd.Flags().Changed("no-cache") {
				noCache = c.Config.Render.NoCache
			}

			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			src := dot.ToDOT(s, dot.Options{Detailed: detailed, RankDir: rankDir})

			data := []byte(src)
			cached := false
			if format == formatSVG {
				if data, cached, err = c.renderSVG(cmd.Context(), src, noCache); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			out := newPrinter(cmd)
			out.success("Exported %s", format)
			out.stats(s.Len(), countManaged(s), cached)
			out.file(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include kind, renderer state and composition count in labels")
	cmd.Flags().StringVar(&rankDir, "rankdir", "", "graph direction: TB, LR (default TB)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

// renderSVG renders src through the cache and reports whether the result
// was served from it.
func (c *CLI) renderSVG(ctx context.Context, src string, noCache bool) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)

	ch, err := newCache(noCache)
	if err != nil {
		return nil, false, err
	}
	defer ch.Close()

	key := cache.ArtifactKey(src, formatSVG)
	if data, hit, err := ch.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if hit {
		logger.Debug("render cache hit", "key", key[:12])
		return data, true, nil
	}

	prog := startProgress(logger, "rendered svg", "bytes_in", len(src))
	svg, err := dot.RenderSVG(ctx, src)
	if err != nil {
		return nil, false, err
	}
	prog.done("bytes_out", len(svg))

	if err := ch.Set(ctx, key, svg, cache.ArtifactTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return svg, false, nil
}
