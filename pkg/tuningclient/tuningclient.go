// Package tuningclient defines the narrow interface the dispatcher
// publishes refined classifications through. The resource-tuning back end
// itself is out of scope (spec.md §1 "treated as external collaborators");
// this package only gives the core a concrete seam to call, the way the
// teacher's pkg/exporters gives a narrow interface in front of several
// concrete, independently-out-of-scope sinks.
package tuningclient

import (
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// Signal is one refined classification published to the resource-tuning
// back end: the pid, the predicted class, the packed SignalCode spec.md §3
// defines as `(category << 16) | subtype`, and the raw Subtype count a
// post-processor derived it from (spec.md §4.8's sigSubtype, e.g. a
// thread count), kept alongside for back ends that want the unpacked
// value.
type Signal struct {
	PID        uint32
	Class      string
	SignalCode uint32
	Subtype    uint32
}

// Client publishes a refined Signal to the external resource-tuning
// facility. The real back end is external (spec.md §1); this repo ships
// only the interface and a logging stub.
type Client interface {
	Publish(sig Signal)
}

// LoggingClient is the only in-repo Client implementation: it logs every
// published signal instead of tuning anything, standing in for the real
// out-of-process resource-tuning facility.
type LoggingClient struct{}

// NewLoggingClient returns a Client that only logs.
func NewLoggingClient() *LoggingClient { return &LoggingClient{} }

func (LoggingClient) Publish(sig Signal) {
	logger.L().Info("publishing signal",
		helpers.Int("pid", int(sig.PID)),
		helpers.String("class", sig.Class),
		helpers.Int("signalCode", int(sig.SignalCode)),
		helpers.Int("subtype", int(sig.Subtype)))
}
