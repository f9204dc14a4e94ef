// Package supervisor implements C9: startup wiring, the event-loop that
// feeds C5 into C6, and orderly shutdown (spec.md §4.9, SPEC_FULL.md §8).
// cmd/classifierd is a thin wrapper that loads Config and hands it to
// supervisor.Run.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"

	"github.com/classifierd/classifierd/pkg/config"
	"github.com/classifierd/classifierd/pkg/csvdump"
	"github.com/classifierd/classifierd/pkg/dispatcher"
	"github.com/classifierd/classifierd/pkg/features"
	"github.com/classifierd/classifierd/pkg/inference"
	"github.com/classifierd/classifierd/pkg/metricsmanager"
	"github.com/classifierd/classifierd/pkg/pluginregistry"
	"github.com/classifierd/classifierd/pkg/postprocess/gstreamer"
	"github.com/classifierd/classifierd/pkg/procevents"
	"github.com/classifierd/classifierd/pkg/procreader"
	"github.com/classifierd/classifierd/pkg/tokennorm"
	"github.com/classifierd/classifierd/pkg/tuningclient"
	"github.com/classifierd/classifierd/pkg/utils"
)

// Supervisor owns every shared, read-only-after-init collaborator (spec.md
// §3 Ownership) and the per-pid perf-handle bookkeeping spec.md §4.6 says
// is cleared on Exit.
type Supervisor struct {
	cfg config.Config

	reader    *procreader.Reader
	ignore    *tokennorm.IgnoreMap
	denylist  *dispatcher.Denylist
	engine    *inference.Engine
	registry  *pluginregistry.Registry
	providers features.Registry
	tuning    tuningclient.Client
	metrics   metricsmanager.MetricsManager
	dump      *csvdump.Dumper

	dispatcher *dispatcher.Dispatcher
	source     *procevents.Source

	perfHandles   map[uint32]struct{}
	perfHandlesMu sync.Mutex
}

// New loads every artifact named by cfg and wires the classification
// pipeline, but does not yet open the event socket or start workers
// (spec.md §7: artifact/config failures here are startup-fatal).
func New(cfg config.Config) (*Supervisor, error) {
	reader := &procreader.Reader{ProcRoot: cfg.ProcRoot}

	ignore, err := tokennorm.LoadIgnoreMap(filepath.Join(cfg.ArtifactDir, "ignore-tokens.txt"))
	if err != nil {
		return nil, fmt.Errorf("loading ignore-token manifest: %w", err)
	}

	denylist := dispatcher.LoadDenylist(filepath.Join(cfg.ArtifactDir, "classifier-blocklist.txt"))

	engine, err := inference.LoadArtifacts(
		filepath.Join(cfg.ArtifactDir, "embedding-model.json"),
		filepath.Join(cfg.ArtifactDir, "classifier-model.json"),
		filepath.Join(cfg.ArtifactDir, "meta.json"),
	)
	if err != nil {
		return nil, fmt.Errorf("loading model artifacts: %w", err)
	}

	registry := pluginregistry.New()
	pluginregistry.ApplyBuiltins(registry, gstreamer.Register(reader))
	if err := pluginregistry.LoadDynamicPlugins(registry, cfg.PluginDir); err != nil {
		logger.L().Warning("dynamic plugin load failed", helpers.Error(err))
	}
	manifest, err := pluginregistry.LoadManifest(cfg.PluginManifest)
	if err != nil {
		logger.L().Warning("could not parse plugin manifest", helpers.Error(err))
	} else {
		manifest.Check(registry)
	}

	var metrics metricsmanager.MetricsManager
	if cfg.EnablePrometheusExporter {
		metrics = metricsmanager.NewPrometheusMetrics()
	} else {
		metrics = metricsmanager.NewMock()
	}

	s := &Supervisor{
		cfg:         cfg,
		reader:      reader,
		ignore:      ignore,
		denylist:    denylist,
		engine:      engine,
		registry:    registry,
		providers:   features.NewDefaultRegistry(cfg.ProcRoot),
		tuning:      tuningclient.NewLoggingClient(),
		metrics:     metrics,
		dump:        csvdump.New(cfg.CSVUnfiltered, cfg.CSVPruned),
		perfHandles: make(map[uint32]struct{}),
	}

	s.dispatcher = dispatcher.New(dispatcher.Config{
		Workers:        cfg.Workers,
		QueueDepth:     cfg.QueueDepth,
		CooldownWindow: cfg.CooldownWindow,
	}, reader, denylist, s.classify, metrics)

	return s, nil
}

// Run starts the metrics server (if enabled), the worker pool, subscribes
// to the kernel process-event connector, and blocks until ctx is canceled
// or SIGINT/SIGTERM arrives, then shuts down in order (spec.md §4.9,
// §4.6 Shutdown).
func (s *Supervisor) Run(ctx context.Context) error {
	if s.cfg.EnablePrometheusExporter {
		if err := s.metrics.Start(s.cfg.MetricsAddr); err != nil {
			logger.L().Warning("metrics server failed to start", helpers.Error(err))
		}
		defer s.metrics.Destroy()
	}

	if err := s.dispatcher.Start(); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	defer s.dispatcher.Stop()

	source, err := procevents.Connect(procevents.ConnectRetry())
	if err != nil {
		return fmt.Errorf("subscribing to process-event connector: %w", err)
	}
	s.source = source
	defer source.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			logger.L().Info("shutdown signal received")
			cancel()
		case <-runCtx.Done():
		}
	}()

	logger.L().Info("classifierd started", helpers.Int("workers", s.cfg.Workers))
	for ev := range source.Events(runCtx) {
		s.handleEvent(ev)
	}
	logger.L().Info("classifierd shutting down")
	return nil
}

// handleEvent routes one decoded ProcessEvent to the dispatcher or to
// per-pid state cleanup (spec.md §4.6).
func (s *Supervisor) handleEvent(ev procevents.Event) {
	switch ev.Kind {
	case procevents.EventExec:
		s.dispatcher.Enqueue(ev.PID)
	case procevents.EventExit:
		s.perfHandlesMu.Lock()
		delete(s.perfHandles, ev.PID)
		s.perfHandlesMu.Unlock()
	}
}

// Stop releases the event socket, if open, and stops the dispatcher
// outside the normal Run loop. Nothing in this repository calls it.
func (s *Supervisor) Stop() {
	if s.source != nil {
		_ = s.source.Close()
	}
	s.dispatcher.Stop()
}

// ExitCodeFor maps a startup error to the process exit code cmd/classifierd
// should use, distinguishing artifact-load failures from event-socket
// failures per spec.md §7.
func ExitCodeFor(stage string) int {
	switch stage {
	case "artifacts":
		return utils.ExitCodeArtifactLoad
	case "socket":
		return utils.ExitCodeEventSocket
	default:
		return utils.ExitCodeError
	}
}
