package gstreamer

import (
	"github.com/classifierd/classifierd/pkg/pluginregistry"
	"github.com/classifierd/classifierd/pkg/procreader"
)

// WorkloadKeyPrefix is the predicted-class prefix that routes a job to this
// post-processor (spec.md §4.8: "Triggered when the predicted class begins
// with 'gst-launch-'").
const WorkloadKeyPrefix = "gst-launch-"

// Register wires the GStreamer post-processor into reg under
// WorkloadKeyPrefix, reading cmdline and thread metadata from reader for
// whatever pid the dispatcher hands it. It is the pluginregistry.Builtin
// this package contributes (SPEC_FULL.md §7).
func Register(reader *procreader.Reader) pluginregistry.Builtin {
	return func(reg *pluginregistry.Registry) {
		reg.RegisterPostProcess(WorkloadKeyPrefix, func(pid uint32, class string) (uint32, uint32) {
			buf, err := reader.CmdlineRaw(pid)
			if err != nil {
				return Encode(Multimedia, Undetermined), 0
			}
			result := FetchUsecaseDetails(pid, buf, reader)
			return Encode(Multimedia, result.SignalID), uint32(result.Subtype)
		})
	}
}
