// Package pluginregistry implements the C7 Plugin Registry: two tables
// (resource appliers keyed by id, post-process callbacks keyed by
// workload-key prefix) populated at startup and read-only once worker
// threads begin (spec.md §4.7), grounded on classifier.cpp's registration
// calls and re-expressed as explicit Go registration since the language has
// no load-time constructor hook (spec.md §9 REDESIGN FLAGS).
package pluginregistry

import (
	"strings"
	"sync"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// ApplyFunc tunes a resource for a pid; TearFunc reverses it.
type ApplyFunc func(pid uint32) error
type TearFunc func(pid uint32) error

type applierEntry struct {
	apply ApplyFunc
	tear  TearFunc
}

// PostProcessFunc refines a (sigId, sigSubtype) pair for a pid whose
// predicted class matched the registered workload-key prefix (spec.md
// §4.7, §4.8).
type PostProcessFunc func(pid uint32, class string) (sigID, sigSubtype uint32)

// Registry holds the applier table and the post-process prefix lookup. It
// is safe for concurrent reads once registration is complete; registration
// itself is expected to run single-threaded at startup, but the mutex
// guards against a misbehaving dynamic plugin registering late.
type Registry struct {
	mu       sync.RWMutex
	appliers map[uint32]applierEntry

	postProcess map[string]PostProcessFunc
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		appliers:    make(map[uint32]applierEntry),
		postProcess: make(map[string]PostProcessFunc),
	}
}

// RegisterResourceApplier stores apply/tear under resourceID. Duplicate
// registration on the same id overwrites the previous entry and is logged
// (spec.md §4.7).
func (r *Registry) RegisterResourceApplier(resourceID uint32, apply ApplyFunc, tear TearFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.appliers[resourceID]; exists {
		logger.L().Warning("overwriting resource applier registration", helpers.Int("resourceId", int(resourceID)))
	}
	r.appliers[resourceID] = applierEntry{apply: apply, tear: tear}
}

// Applier returns the apply/tear pair registered for resourceID, if any.
func (r *Registry) Applier(resourceID uint32) (ApplyFunc, TearFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.appliers[resourceID]
	if !ok {
		return nil, nil, false
	}
	return e.apply, e.tear, true
}

// RegisterPostProcess associates fn with every predicted class label that
// starts with workloadKey (spec.md §4.7).
func (r *Registry) RegisterPostProcess(workloadKey string, fn PostProcessFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.postProcess[workloadKey]; exists {
		logger.L().Warning("overwriting post-process registration", helpers.String("workloadKey", workloadKey))
	}
	r.postProcess[workloadKey] = fn
}

// PostProcessFor returns the longest-registered-prefix match for class,
// matching case-sensitively at the start of the string (spec.md §4.7: "the
// longest-prefix-first match against the predicted class label"). The
// registry is expected to hold a small, startup-fixed number of workload
// keys, so a plain map with an explicit longest-match scan over it is the
// right shape here rather than a prefix-tree structure built for a much
// larger or churning key set.
func (r *Registry) PostProcessFor(class string) (PostProcessFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best string
	var bestFn PostProcessFunc
	for key, fn := range r.postProcess {
		if !strings.HasPrefix(class, key) {
			continue
		}
		if len(key) > len(best) {
			best = key
			bestFn = fn
		}
	}
	if bestFn == nil {
		return nil, false
	}
	return bestFn, true
}
