// Package scene provides the in-memory scene graph that layerdeck hosts
// inspect and mutate.
//
// A [Scene] is a forest of [Node] values. Each node has a stable [ID], a
// display name, a weak reference to its parent and an ordered list of
// children. Capabilities are attached as optional parts:
//
//   - [Actor]: marks the root of a layered actor and carries its
//     composition map
//   - [Renderer]: a single renderer with an enabled flag
//   - Camera: a display-only camera
//
// Names are labels, never identities. Two siblings may share a name and are
// still distinct nodes; every lookup that matters for toggling goes through
// [ID].
//
// # Scene Files
//
// Scenes are stored as nested JSON or YAML documents:
//
//	{
//	  "version": 1,
//	  "roots": [{
//	    "name": "Hero",
//	    "actor": {"composition": "Body+Face"},
//	    "children": [
//	      {"name": "Body", "renderer": {"enabled": true}},
//	      {"name": "Face", "renderer": {"enabled": false}}
//	    ]
//	  }]
//	}
//
// Node ids are optional in files and generated on load. [WriteFile] always
// writes them, so a scene saved once keeps its identities.
//
//	s, _ := scene.ReadFile("hero.yaml")
//	arm, _ := s.Find("Hero/Body/Arm")
//	arm.Renderer.SetEnabled(false)
//	_ = scene.WriteFile(s, "hero.yaml")
//
// # Concurrency
//
// A Scene is not safe for concurrent use. Hosts serialize access.
package scene
