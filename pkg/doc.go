// Package pkg provides the core libraries for layerdeck.
//
// # Overview
//
// Layerdeck decorates the rows of a scene hierarchy panel with next, plus
// and minus icons and flips the enabled flag of the renderers under a node
// when one is clicked. The pkg directory is organized into these areas:
//
//  1. [scene] - The node tree, its identities and the JSON/YAML scene file
//  2. [layers] - The layer visibility controller (classification,
//     affordances, visual states and mutations)
//  3. [panel] - The host contract and the draw pass that binds the
//     controller to a panel
//  4. [render/dot] - Graphviz diagrams of a hierarchy
//  5. [cache], [observability], [errors], [buildinfo] - Supporting
//     infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	scene file (JSON/YAML)
//	         ↓
//	    [scene] package (tree with uuid identities)
//	         ↓
//	    [layers] package (kinds, affordances, Activate)
//	         ↓
//	    [panel] package (one draw pass per frame)
//	         ↓
//	terminal panel, HTTP panel, or DOT/SVG export
//
// # Quick Start
//
//	s, err := scene.ReadFile("hero.yaml")
//	if err != nil {
//	    return err
//	}
//	ctrl := layers.New(s)
//	arm, _ := s.Find("Hero/Body/Arm")
//	ctrl.Activate(ctx, arm.ID, layers.ActionNext)
//	return scene.WriteFile(s, "hero.yaml")
//
// Hosts implement [panel.Host] and call [panel.Overlay.Draw] once per frame.
// The bundled hosts live in internal/tui and internal/server.
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/scene
// [layers]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/layers
// [panel]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/panel
// [panel.Host]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/panel#Host
// [panel.Overlay.Draw]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/panel#Overlay.Draw
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/layerdeck/pkg/buildinfo
package pkg
