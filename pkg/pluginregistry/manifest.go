package pluginregistry

import (
	"os"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"gopkg.in/yaml.v3"
)

// Manifest lists the resource-applier ids and workload-key prefixes a
// deployment expects to be registered after both the builtin and dynamic
// registration passes (SPEC_FULL.md §7). It is a diagnostic aid, not an
// enforcement mechanism: a missing entry is logged, never fatal.
type Manifest struct {
	ResourceAppliers []uint32 `yaml:"resourceAppliers"`
	PostProcessKeys  []string `yaml:"postProcessKeys"`
}

// LoadManifest parses a plugins.yaml file. A missing path yields an empty,
// always-passing Manifest.
func LoadManifest(path string) (Manifest, error) {
	if path == "" {
		return Manifest{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Check logs a warning for every manifest entry missing from reg after
// registration; it never returns an error (SPEC_FULL.md §7: "logs a
// warning (not fatal) for any entry missing after both registration
// passes").
func (m Manifest) Check(reg *Registry) {
	for _, id := range m.ResourceAppliers {
		if _, _, ok := reg.Applier(id); !ok {
			logger.L().Warning("plugin manifest expected a resource applier that was never registered", helpers.Int("resourceId", int(id)))
		}
	}
	for _, key := range m.PostProcessKeys {
		if _, ok := reg.PostProcessFor(key); !ok {
			logger.L().Warning("plugin manifest expected a post-process registration that was never matched", helpers.String("workloadKey", key))
		}
	}
}
