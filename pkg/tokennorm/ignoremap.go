package tokennorm

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// IgnoreMap is the loaded, immutable-after-load set of forbidden tokens per
// label (spec.md §3 IgnoreMap, §6 ignore-tokens.txt).
type IgnoreMap struct {
	sets map[Label]mapset.Set[string]
}

// Contains reports whether tok is a stopword for label l.
func (m *IgnoreMap) Contains(l Label, tok string) bool {
	if m == nil {
		return false
	}
	set, ok := m.sets[l]
	if !ok {
		return false
	}
	return set.Contains(tok)
}

// LoadIgnoreMap parses a file of lines shaped `label: tok1, tok2, ...`, the
// same format the original tool's loadIgnoreMap reads (ignore-tokens.txt).
// Lines naming a label outside Labels are ignored. A missing file yields an
// empty, usable map rather than an error: the ignore-token manifest is an
// optional refinement, not a hard startup dependency.
func LoadIgnoreMap(path string) (*IgnoreMap, error) {
	m := &IgnoreMap{sets: make(map[Label]mapset.Set[string])}
	for _, l := range Labels {
		m.sets[l] = mapset.NewThreadUnsafeSet[string]()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.L().Warning("could not open ignore-token manifest", helpers.String("path", path), helpers.Error(err))
		return m, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, values, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		label := ParseManifestLabel(key)
		set, ok := m.sets[label]
		if !ok {
			continue
		}
		for _, v := range strings.Split(values, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				set.Add(v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("reading ignore-token manifest %s: %w", path, err)
	}
	return m, nil
}
