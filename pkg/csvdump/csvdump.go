// Package csvdump implements the offline CSV dump documented in spec.md §6
// and SPEC_FULL.md §9: an opt-in, isolated side effect with no influence on
// the classification path and no stable on-disk schema (spec.md §1
// Non-goals). It exists purely so the dataset-construction workflow the
// spec mentions has somewhere to write from, the way the teacher's
// exporters package ships a stdout/http exporter next to its real ones.
package csvdump

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"

	"github.com/classifierd/classifierd/pkg/features"
	"github.com/classifierd/classifierd/pkg/tokennorm"
)

// Dumper writes the two CSV dumps spec.md §6 names. A failure to write is
// logged and otherwise ignored: this package must never affect
// classification (SPEC_FULL.md §9).
type Dumper struct {
	UnfilteredDir string
	PrunedDir     string
}

// New returns a Dumper rooted at the two configured directories.
func New(unfilteredDir, prunedDir string) *Dumper {
	return &Dumper{UnfilteredDir: unfilteredDir, PrunedDir: prunedDir}
}

// WriteUnfiltered dumps the per-label token lists it is given for one pid
// to `<UnfilteredDir>/<comm>_<pid>_proc_info.csv_unfiltered.csv` (spec.md §6).
// pkg/supervisor passes the lists after tokennorm.Apply, so the file holds
// normalized, stopword-filtered tokens, not the pre-filter ones.
func (d *Dumper) WriteUnfiltered(comm string, pid uint32, raw features.TextTokens) {
	path := filepath.Join(d.UnfilteredDir, fmt.Sprintf("%s_%d_proc_info.csv_unfiltered.csv", comm, pid))
	rows := make([][]string, 0, len(raw)+1)
	rows = append(rows, []string{"label", "token"})
	for _, label := range tokennorm.Labels {
		for _, tok := range raw[label] {
			rows = append(rows, []string{label.String(), tok})
		}
	}
	d.write(path, rows)
}

// WritePruned dumps the post-filter RawFeatureMap for one pid to
// `<PrunedDir>/<comm>_<pid>_proc_info.csv_filtered.csv` (spec.md §6).
func (d *Dumper) WritePruned(comm string, pid uint32, raw features.RawFeatureMap) {
	path := filepath.Join(d.PrunedDir, fmt.Sprintf("%s_%d_proc_info.csv_filtered.csv", comm, pid))
	rows := make([][]string, 0, len(raw)+1)
	rows = append(rows, []string{"key", "value"})
	for k, v := range raw {
		rows = append(rows, []string{k, v})
	}
	d.write(path, rows)
}

func (d *Dumper) write(path string, rows [][]string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.L().Warning("csv dump: could not create directory", helpers.String("path", path), helpers.Error(err))
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.L().Warning("csv dump: could not create file", helpers.String("path", path), helpers.Error(err))
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			logger.L().Warning("csv dump: write failed", helpers.String("path", path), helpers.Error(err))
			return
		}
	}
}

