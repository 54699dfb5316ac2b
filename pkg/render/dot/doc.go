// Package dot renders a scene hierarchy as a Graphviz diagram.
//
// # Usage
//
//	src := dot.ToDOT(s, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Styling
//
// Shapes follow node kind, so a diagram reads the same way as the panel
// icons:
//
//   - Actor roots: bold rounded boxes
//   - Groups: folders
//   - Layers: filled boxes when enabled, dashed grey boxes when disabled
//   - Cameras: ellipses
//
// Nodes outside any layered actor get a grey outline and label, matching the
// undecorated rows of the panel.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process. No external binary is needed.
package dot
