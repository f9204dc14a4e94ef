//go:build linux && cgo

package pluginregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// dynamicRegisterSymbol is the exported symbol name every dynamically
// loaded .so plugin must provide, matching the shape of the original's
// CLASSIFIER_REGISTER_POST_PROCESS_CB / URM_REGISTER_POST_PROCESS_CB
// constructor macros collapsed into one Go-native entry point (spec.md §9).
const dynamicRegisterSymbol = "Register"

// LoadDynamicPlugins walks dir for *.so files and, for each, resolves and
// calls its exported `Register(*pluginregistry.Registry)` function
// (SPEC_FULL.md §7). A missing directory is not an error: dynamic loading
// is opt-in and skipped entirely when dir is empty. A single plugin
// failing to load or resolve its symbol is logged and skipped rather than
// aborting the whole pass, matching spec.md §7's "per-job fatal, not
// daemon fatal" posture extended to plugin load.
func LoadDynamicPlugins(reg *Registry, dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading plugin directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".so" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := plugin.Open(path)
		if err != nil {
			logger.L().Warning("could not open plugin", helpers.String("path", path), helpers.Error(err))
			continue
		}
		sym, err := p.Lookup(dynamicRegisterSymbol)
		if err != nil {
			logger.L().Warning("plugin missing Register symbol", helpers.String("path", path), helpers.Error(err))
			continue
		}
		register, ok := sym.(func(*Registry))
		if !ok {
			logger.L().Warning("plugin Register symbol has wrong signature", helpers.String("path", path))
			continue
		}
		register(reg)
		logger.L().Info("loaded dynamic plugin", helpers.String("path", path))
	}
	return nil
}
