package gstreamer

import (
	"strconv"
	"strings"
)

const (
	encodeMarker  = "v4l2h264enc"
	decodeMarker  = "v4l2h264dec"
	previewMarker = "qtiqmmfsrc"
	nameMarker    = "name="
	heightMarker  = "height="
	multiTarget   = "gst-camera-per"
)

// ThreadCounter counts threads under /proc/<pid>/task/<tid>/comm whose name
// case-insensitively contains sub, and reports whether comm (case-sensitive
// substring match against the process's own comm) contains target.
type ThreadCounter interface {
	ThreadCommContains(pid uint32, sub string) int
	CommContains(pid uint32, target string) bool
}

// Result is the outcome of FetchUsecaseDetails: the refined signal id and
// its subtype count, matching sigId/sigSubtype out-parameters in the
// original.
type Result struct {
	SignalID SignalID
	Subtype  int
	Height   int
}

// FetchUsecaseDetails disambiguates a multimedia workload from its raw
// cmdline text and live thread metadata (spec.md §4.8 steps 1-8). buf is the
// cmdline with NUL bytes already turned into spaces (procreader.CmdlineRaw).
func FetchUsecaseDetails(pid uint32, buf string, counter ThreadCounter) Result {
	lower := strings.ToLower(buf)
	var encode, decode int
	var subtype int
	var height int
	sigID := Undetermined

	if idx := strings.Index(lower, encodeMarker); idx != -1 {
		encode++
		sigID = CameraEncode
		name := elementName(buf)
		subtype = counter.ThreadCommContains(pid, name)
	}

	multi := counter.CommContains(pid, multiTarget)
	if subtype > 1 || multi {
		sigID = CameraEncodeMultiStreams
	}

	if idx := strings.Index(lower, heightMarker); idx != -1 {
		height = parseHeight(buf[idx+len(heightMarker):])
	}

	if idx := strings.Index(lower, decodeMarker); idx != -1 {
		decode++
		sigID = VideoDecode
		subtype = counter.ThreadCommContains(pid, decodeMarker)
	}

	if encode == 0 && decode == 0 {
		if strings.Contains(lower, previewMarker) {
			sigID = CameraPreview
		}
	}

	if encode > 0 && decode > 0 {
		sigID = EncodeDecode
	}

	return Result{SignalID: sigID, Subtype: subtype, Height: height}
}

// elementName extracts the value following the first "name=" in the whole
// cmdline buffer up to the next whitespace, defaulting to "camsrc" when
// absent (spec.md §4.8 step 2). The scan starts at the buffer's beginning,
// not at the matched encoder token, matching the original's
// `strstr(buf, "name=")` which scans from the start of the whole cmdline
// regardless of where the encoder marker was found.
func elementName(buf string) string {
	idx := strings.Index(buf, nameMarker)
	if idx == -1 {
		return "camsrc"
	}
	rest := buf[idx+len(nameMarker):]
	if end := strings.IndexAny(rest, " \t\n"); end != -1 {
		rest = rest[:end]
	}
	if rest == "" {
		return "camsrc"
	}
	return rest
}

func parseHeight(rest string) int {
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}
