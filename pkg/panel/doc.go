// Package panel binds the layer visibility controller to a hierarchy panel.
//
// A host is anything that can enumerate its visible rows and draw an icon at
// a rectangle. [Overlay.Draw] is one explicit draw pass: for every visible
// row that belongs to a layered actor it draws the kind icon and the row's
// affordances, and applies the mutation of any icon the host reports as
// clicked.
//
// # Slot Layout
//
// Icons are right-aligned on the row, one icon width apart:
//
//	| name ...        [kind][next|add][plus][minus] |
//	                   slot0 slot1     slot2 slot3
//
// Root rows show the add composition map icon in the Next slot, since roots
// never offer Next. A slot whose affordance is not offered stays empty.
//
// # Hosts
//
// The bundled hosts are the terminal panel in internal/tui and the HTTP
// panel in internal/server. Both serialize draw passes and clicks; the
// Overlay itself holds no per-frame state.
package panel
