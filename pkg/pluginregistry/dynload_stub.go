//go:build !(linux && cgo)

package pluginregistry

import "github.com/kubescape/go-logger"

// LoadDynamicPlugins is a no-op stub for builds without cgo (dynamic .so
// loading needs plugin.Open, which requires cgo and Linux). A non-empty
// dir is logged so an operator relying on dynamic plugins on an
// unsupported build notices instead of silently getting nothing
// (SPEC_FULL.md §7).
func LoadDynamicPlugins(reg *Registry, dir string) error {
	if dir != "" {
		logger.L().Warning("dynamic plugin loading is unavailable on this build (requires linux+cgo); pluginDir is ignored")
	}
	return nil
}
