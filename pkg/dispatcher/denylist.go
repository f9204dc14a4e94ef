package dispatcher

import (
	"bufio"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// Denylist holds the set of comm names the dispatcher never classifies
// (spec.md §4.3 "ignored processes"). A missing or unreadable denylist file
// is not fatal: the daemon starts with an empty, always-usable denylist,
// mirroring load_ignored_processes' behavior of logging a warning and
// continuing with zero entries.
type Denylist struct {
	names mapset.Set[string]
}

// LoadDenylist reads a comma-separated-per-line file of comm names, one
// process name (or several, comma-separated) per line, trimming whitespace
// around each segment, grounded on classifier.cpp's load_ignored_processes.
func LoadDenylist(path string) *Denylist {
	d := &Denylist{names: mapset.NewSet[string]()}
	if path == "" {
		return d
	}
	f, err := os.Open(path)
	if err != nil {
		logger.L().Warning("could not open denylist file", helpers.String("path", path), helpers.Error(err))
		return d
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, segment := range strings.Split(scanner.Text(), ",") {
			segment = strings.TrimSpace(segment)
			if segment != "" {
				d.names.Add(segment)
			}
		}
	}
	logger.L().Info("loaded denylist", helpers.Int("count", d.names.Cardinality()))
	return d
}

// LoadDenylistFromNames builds a Denylist directly from a list of comm
// names, for tests and for callers that already have the list in memory.
func LoadDenylistFromNames(names ...string) *Denylist {
	d := &Denylist{names: mapset.NewSet[string]()}
	for _, n := range names {
		d.names.Add(n)
	}
	return d
}

// Contains reports whether comm is on the denylist (case-sensitive, spec.md
// §4.3).
func (d *Denylist) Contains(comm string) bool {
	if d == nil || d.names == nil {
		return false
	}
	return d.names.Contains(comm)
}
