// Package features implements the C3 Feature Assembler: turning a live
// pid's normalized tokens and numeric metrics into the model's RawFeatureMap
// (spec.md §4.3), grounded on the numeric-metric reads in
// pkg/processtree/feeder/procfs_feeder.go.
package features

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

// Provider resolves a single numeric column for a live pid. The bool result
// is false when the column cannot be determined for this pid (missing
// source file, parse failure, or a platform without the underlying metric);
// the caller then defaults the column to 0.0, matching spec.md §4.3's
// "unknown columns default to 0.0" rule.
type Provider func(pid uint32) (float64, bool)

// Registry maps a numeric_cols name from the model metadata to the provider
// that resolves it.
type Registry map[string]Provider

// NewDefaultRegistry returns the provider set documented in SPEC_FULL.md §6:
// process accounting and I/O counters from procfs, scheduler timing parsed
// directly from /proc/<pid>/schedstat, best-effort TCP/UDP queue bytes, and
// zero-valued stubs for the platform metrics (GPU, display) that have no
// universal kernel source.
func NewDefaultRegistry(procRoot string) Registry {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		fs = procfs.FS{}
	}

	r := Registry{
		"cpu_time_ticks": func(pid uint32) (float64, bool) {
			stat, ok := procStat(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(stat.UTime + stat.STime), true
		},
		"thread_count": func(pid uint32) (float64, bool) {
			stat, ok := procStat(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(stat.NumThreads), true
		},
		"rss_bytes": func(pid uint32) (float64, bool) {
			stat, ok := procStat(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(stat.ResidentMemory()), true
		},
		"vsize_bytes": func(pid uint32) (float64, bool) {
			stat, ok := procStat(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(stat.VSize), true
		},
		"io_read_bytes": func(pid uint32) (float64, bool) {
			io, ok := procIO(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(io.ReadBytes), true
		},
		"io_write_bytes": func(pid uint32) (float64, bool) {
			io, ok := procIO(fs, pid)
			if !ok {
				return 0, false
			}
			return float64(io.WriteBytes), true
		},
		"sched_runtime_ns": func(pid uint32) (float64, bool) {
			fields, ok := schedstatFields(procRoot, pid)
			if !ok {
				return 0, false
			}
			return fields[0], true
		},
		"sched_wait_ns": func(pid uint32) (float64, bool) {
			fields, ok := schedstatFields(procRoot, pid)
			if !ok {
				return 0, false
			}
			return fields[1], true
		},
		"tcp_queue_bytes": func(pid uint32) (float64, bool) {
			return netQueueBytes(procRoot, pid, "tcp")
		},
		"udp_queue_bytes": func(pid uint32) (float64, bool) {
			return netQueueBytes(procRoot, pid, "udp")
		},
		"gpu_busy_percent":      zeroProvider,
		"gpu_mem_bytes":         zeroProvider,
		"display_on":            zeroProvider,
		"active_display_count": zeroProvider,
	}
	return r
}

// zeroProvider is the documented seam for platform-specific GPU/display
// plugins to override (SPEC_FULL.md §6, §7): there is no universal kernel
// source for these columns, so they resolve to 0.0 rather than "unknown".
func zeroProvider(uint32) (float64, bool) { return 0, true }

func procStat(fs procfs.FS, pid uint32) (procfs.ProcStat, bool) {
	p, err := fs.Proc(int(pid))
	if err != nil {
		return procfs.ProcStat{}, false
	}
	stat, err := p.Stat()
	if err != nil {
		return procfs.ProcStat{}, false
	}
	return stat, true
}

func procIO(fs procfs.FS, pid uint32) (procfs.ProcIO, bool) {
	p, err := fs.Proc(int(pid))
	if err != nil {
		return procfs.ProcIO{}, false
	}
	io, err := p.IO()
	if err != nil {
		return procfs.ProcIO{}, false
	}
	return io, true
}

// schedstatFields parses "/proc/<pid>/schedstat", a three-field
// whitespace-separated file (runtime_ns wait_ns timeslices) that procfs does
// not expose a struct for.
func schedstatFields(procRoot string, pid uint32) ([2]float64, bool) {
	data, err := os.ReadFile(procRoot + "/" + strconv.FormatUint(uint64(pid), 10) + "/schedstat")
	if err != nil {
		return [2]float64{}, false
	}
	parts := strings.Fields(string(data))
	if len(parts) < 2 {
		return [2]float64{}, false
	}
	runtimeNs, err1 := strconv.ParseFloat(parts[0], 64)
	waitNs, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return [2]float64{}, false
	}
	return [2]float64{runtimeNs, waitNs}, true
}

// netQueueBytes sums the hex tx_queue/rx_queue fields of
// /proc/<pid>/net/{tcp,udp}, a best-effort approximation of outstanding
// socket buffer bytes (SPEC_FULL.md §6).
func netQueueBytes(procRoot string, pid uint32, proto string) (float64, bool) {
	path := procRoot + "/" + strconv.FormatUint(uint64(pid), 10) + "/net/" + proto
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	var total float64
	found := false
	scanner := bufio.NewScanner(f)
	scanner.Scan() // header line
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}
		txRx := strings.SplitN(fields[4], ":", 2)
		if len(txRx) != 2 {
			continue
		}
		tx, err1 := strconv.ParseUint(txRx[0], 16, 64)
		rx, err2 := strconv.ParseUint(txRx[1], 16, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		total += float64(tx + rx)
		found = true
	}
	return total, found
}
