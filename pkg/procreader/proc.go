package procreader

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/classifierd/classifierd/pkg/tokennorm"
)

// Reader reads and tokenizes the nine per-process sources for a live pid.
// Every method is a pure function of the live state of the pseudo-FS at
// call time (spec.md §4.1): it never caches across calls, and a failed read
// yields an empty token list with no error, because the process may have
// already exited (a transient/expected condition, spec.md §7).
type Reader struct {
	ProcRoot string
}

// New returns a Reader rooted at /proc.
func New() *Reader {
	return &Reader{ProcRoot: "/proc"}
}

func (r *Reader) pidPath(pid uint32, parts ...string) string {
	return filepath.Join(append([]string{r.ProcRoot, strconv.FormatUint(uint64(pid), 10)}, parts...)...)
}

func readFirstLine(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return line, true
}

// Attr reads /proc/<pid>/attr/current (spec.md §4.1 attr row).
func (r *Reader) Attr(pid uint32) []string {
	line, ok := readFirstLine(r.pidPath(pid, "attr", "current"))
	if !ok {
		return nil
	}
	line = strings.TrimSuffix(strings.TrimSpace(line), " (enforce)")
	return splitAny(line, ".:")
}

// Cgroup reads /proc/<pid>/cgroup (spec.md §4.1 cgroup row).
func (r *Reader) Cgroup(pid uint32) []string {
	data, err := os.ReadFile(r.pidPath(pid, "cgroup"))
	if err != nil {
		return nil
	}
	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		tokens = append(tokens, splitAny(line, `:"/`)...)
	}
	return tokens
}

// Cmdline reads /proc/<pid>/cmdline (spec.md §4.1 cmdline row).
func (r *Reader) Cmdline(pid uint32) []string {
	data, err := os.ReadFile(r.pidPath(pid, "cmdline"))
	if err != nil {
		return nil
	}
	var tokens []string
	for _, arg := range strings.Split(strings.TrimRight(string(data), "\x00"), "\x00") {
		if arg == "" {
			continue
		}
		for _, tok := range splitAny(arg, "./!") {
			tok = strings.TrimSpace(tok)
			if tok == "" || len(tok) <= 1 || tokennorm.IsDigitsOnly(tok) {
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// CmdlineRaw returns the raw cmdline bytes with NULs turned into spaces, the
// shape the GStreamer post-processor (spec.md §4.8) scans directly.
func (r *Reader) CmdlineRaw(pid uint32) (string, error) {
	data, err := os.ReadFile(r.pidPath(pid, "cmdline"))
	if err != nil {
		return "", err
	}
	return strings.Map(func(rn rune) rune {
		if rn == 0 {
			return ' '
		}
		return rn
	}, string(data)), nil
}

// Comm reads /proc/<pid>/comm (spec.md §4.1 comm row).
func (r *Reader) Comm(pid uint32) (string, bool) {
	line, ok := readFirstLine(r.pidPath(pid, "comm"))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// CommTokens tokenizes comm by splitting on '.' and dropping short tokens.
func (r *Reader) CommTokens(pid uint32) []string {
	comm, ok := r.Comm(pid)
	if !ok {
		return nil
	}
	var tokens []string
	for _, tok := range splitAny(comm, ".") {
		tok = strings.TrimSpace(tok)
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// MapFiles reads /proc/<pid>/map_files (spec.md §4.1 maps row).
func (r *Reader) MapFiles(pid uint32) []string {
	dirPath := r.pidPath(pid, "map_files")
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		target, err := os.Readlink(filepath.Join(dirPath, e.Name()))
		if err != nil {
			continue
		}
		for _, tok := range splitAny(target, `/()_:.`) {
			simplified := tokennorm.NormalizeLibraryName(tok)
			if simplified == "" || len(simplified) <= 1 {
				continue
			}
			if tokennorm.IsDigitsOnly(simplified) {
				continue
			}
			if _, dup := seen[simplified]; dup {
				continue
			}
			seen[simplified] = struct{}{}
			out = append(out, simplified)
		}
	}
	return out
}

// FDs reads /proc/<pid>/fd (spec.md §4.1 fds row).
func (r *Reader) FDs(pid uint32) []string {
	dirPath := r.pidPath(pid, "fd")
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		target, err := os.Readlink(filepath.Join(dirPath, e.Name()))
		if err != nil {
			continue
		}
		for _, tok := range splitAny(target, `:[]/()=`) {
			if tok == "" {
				continue
			}
			cleaned := strings.TrimSpace(tokennorm.StripDatesAndTimes(tok))
			if cleaned == "" {
				continue
			}
			if tokennorm.IsDigitsOnly(cleaned) {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}

// Environ reads /proc/<pid>/environ (spec.md §4.1 environ row).
func (r *Reader) Environ(pid uint32) []string {
	data, err := os.ReadFile(r.pidPath(pid, "environ"))
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range strings.Split(strings.TrimRight(string(data), "\x00"), "\x00") {
		if entry == "" {
			continue
		}
		for _, tok := range splitAny(entry, "=@;!-._/:, ") {
			if tokennorm.IsAllSpecialChars(tok) {
				continue
			}
			if tok != "" && !tokennorm.HasDigit(tok) {
				out = append(out, tok)
			}
		}
	}
	return out
}

// Exe reads the /proc/<pid>/exe symlink (spec.md §4.1 exe row).
func (r *Reader) Exe(pid uint32) []string {
	target, err := os.Readlink(r.pidPath(pid, "exe"))
	if err != nil {
		return nil
	}
	var out []string
	for _, tok := range splitAny(target, "/.") {
		if !tokennorm.IsDigitsOnly(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Alive reports whether /proc/<pid> currently exists (spec.md §4.6 liveness
// probe, §4.4 predict-time liveness re-check).
func (r *Reader) Alive(pid uint32) bool {
	_, err := os.Stat(r.pidPath(pid))
	return err == nil
}

// CommContains reports whether target is a substring of the raw comm value
// (spec.md §4.8 checkProcessCommSubstring), case-sensitive as in the
// original.
func (r *Reader) CommContains(pid uint32, target string) bool {
	comm, ok := r.Comm(pid)
	if !ok {
		return false
	}
	return strings.Contains(comm, target)
}

// ThreadCommContains counts threads under /proc/<pid>/task/<tid>/comm whose
// name case-insensitively contains sub (spec.md §4.8 countThreadsWithName).
func (r *Reader) ThreadCommContains(pid uint32, sub string) int {
	taskDir := r.pidPath(pid, "task")
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return 0
	}
	subLower := strings.ToLower(sub)
	count := 0
	for _, e := range entries {
		line, ok := readFirstLine(filepath.Join(taskDir, e.Name(), "comm"))
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(line), subLower) {
			count++
		}
	}
	return count
}
