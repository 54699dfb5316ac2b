package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node kind to each label, plus the renderer state on
	// renderer nodes and the composition map size on actor nodes. When false,
	// only the name is shown.
	Detailed bool
	// RankDir is the Graphviz rankdir. Defaults to "TB".
	RankDir string
}

// ToDOT converts a scene to Graphviz DOT source. Nodes are keyed by id, so
// duplicate names render as separate vertices.
func ToDOT(s *scene.Scene, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}
	ctrl := layers.New(s)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	s.Walk(func(n *scene.Node, _ int) bool {
		row := ctrl.Row(n.ID)
		attrs := fmtAttrs(n, row, fmtLabel(n, row, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.String(), strings.Join(attrs, ", "))
		if p := n.Parent(); p != nil {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", p.ID.String(), n.ID.String()))
		}
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *scene.Node, row layers.Row, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name, row.Kind.String()}
	if n.Renderer != nil {
		if n.Renderer.Enabled() {
			parts = append(parts, "enabled")
		} else {
			parts = append(parts, "disabled")
		}
	}
	if n.Actor != nil {
		parts = append(parts, fmt.Sprintf("compositions: %d", len(n.Actor.CompositionMap)))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *scene.Node, row layers.Row, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch row.Kind {
	case layers.KindRoot:
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=\"#fde68a\"")
	case layers.KindGroup:
		attrs = append(attrs, "shape=folder", "style=filled", "fillcolor=\"#e0f2fe\"")
	case layers.KindLayer:
		if n.Renderer.Enabled() {
			attrs = append(attrs, "fillcolor=\"#bbf7d0\"")
		} else {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=gray40")
		}
	case layers.KindCamera:
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=white")
	}
	if !row.Managed {
		attrs = append(attrs, "color=gray60", "fontcolor=gray40")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales to its
// container instead of using Graphviz's point sizes.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
