package supervisor

import (
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"

	"github.com/classifierd/classifierd/pkg/features"
	"github.com/classifierd/classifierd/pkg/procreader"
	"github.com/classifierd/classifierd/pkg/tokennorm"
	"github.com/classifierd/classifierd/pkg/tuningclient"
)

// extract runs C1 (raw tokens) + C2 (normalization) for one label of one
// pid, the per-label wiring spec.md §4.1/§4.2 describe in prose.
func (s *Supervisor) extract(pid uint32, label tokennorm.Label, comm string) []string {
	var raw []string
	switch label {
	case tokennorm.LabelAttr:
		raw = s.reader.Attr(pid)
	case tokennorm.LabelCgroup:
		raw = s.reader.Cgroup(pid)
	case tokennorm.LabelCmdline:
		raw = s.reader.Cmdline(pid)
	case tokennorm.LabelComm:
		raw = s.reader.CommTokens(pid)
	case tokennorm.LabelMaps:
		raw = s.reader.MapFiles(pid)
	case tokennorm.LabelFDs:
		raw = s.reader.FDs(pid)
	case tokennorm.LabelEnviron:
		raw = s.reader.Environ(pid)
	case tokennorm.LabelExe:
		raw = s.reader.Exe(pid)
	case tokennorm.LabelLogs:
		messages := s.reader.Journal(pid, comm, s.cfg.JournalLines)
		raw = procreader.LogTokens(messages)
	}
	return tokennorm.Apply(raw, tokennorm.DefaultOptions(label), s.ignore)
}

// classify runs the full C1+C2+C3+C4(+C7/C8) pipeline for one live pid,
// matching classify_process in classifier.cpp: gather every labeled token
// list, assemble the raw feature map, gate on sufficiency, predict, and —
// if the predicted class matches a registered post-process prefix — refine
// the signal before publishing it (spec.md §4.6, §4.7, §4.8). Liveness is
// re-checked by the dispatcher immediately before this runs; classify
// itself tolerates the pid vanishing mid-run because every extraction step
// degrades to an empty result rather than erroring (spec.md §4.1).
func (s *Supervisor) classify(pid uint32) {
	start := time.Now()
	comm, _ := s.reader.Comm(pid)

	meta := s.engine.Metadata()
	tokens := make(features.TextTokens, len(meta.TextCols))
	for _, label := range meta.TextCols {
		tokens[label] = s.extract(pid, label, comm)
	}

	raw := features.Assemble(pid, tokens, meta.TextCols, meta.NumericCols, s.providers)
	if s.cfg.DumpCSV {
		s.dump.WriteUnfiltered(comm, pid, tokens)
		s.dump.WritePruned(comm, pid, raw)
	}

	if !features.HasSufficientFeatures(raw, meta.TextCols, meta.NumericCols) {
		logger.L().Debug("insufficient features, skipping", helpers.Int("pid", int(pid)))
		return
	}
	if !s.reader.Alive(pid) {
		return
	}

	class, err := s.engine.Predict(raw)
	if err != nil {
		logger.L().Warning("prediction failed", helpers.Int("pid", int(pid)), helpers.Error(err))
		return
	}
	s.metrics.ReportInferenceLatency(time.Since(start))

	var sigCode, subtype uint32
	if fn, ok := s.registry.PostProcessFor(class); ok {
		if !s.reader.Alive(pid) {
			return
		}
		sigCode, subtype = fn(pid, class)
		s.metrics.ReportPostProcessInvocation(class)
	}

	s.perfHandlesMu.Lock()
	s.perfHandles[pid] = struct{}{}
	s.perfHandlesMu.Unlock()

	s.tuning.Publish(tuningclient.Signal{PID: pid, Class: class, SignalCode: sigCode, Subtype: subtype})
}
