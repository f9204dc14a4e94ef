package pluginregistry

// Builtin registers one or more callbacks on a Registry. supervisor.New
// passes a fixed, explicit list of these (one per compiled-in plugin
// package, e.g. gstreamer.Register) to ApplyBuiltins at startup (SPEC_FULL.md §7: "explicit startup-time discovery... this is
// the primary path"). The spec's REDESIGN FLAGS note that the plugin
// macros' pre-main constructor ordering is an accident of the original's
// implementation, not a contract (spec.md §9); modeling this as a plain
// list built by the supervisor avoids reintroducing an import-order
// dependency.
type Builtin func(*Registry)

// ApplyBuiltins runs every Builtin in builtins against reg, in the order
// given. Order among builtins is undefined by the spec and is the caller's
// to document (spec.md §9: "registrations are append-only").
func ApplyBuiltins(reg *Registry, builtins ...Builtin) {
	for _, b := range builtins {
		b(reg)
	}
}
