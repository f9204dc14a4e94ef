// Package dispatcher implements the bounded job queue and worker pool that
// turn PROC_EVENT_EXEC notifications into classification jobs (spec.md §4.3,
// §4.6 C6 Dispatcher), grounded on classifier.cpp's classification_queue /
// worker_thread pair and re-expressed with an ants.PoolWithFunc worker pool
// the way the teacher's pkg/ptracewatcher and pkg/containerwatcher/v2 do.
package dispatcher

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/panjf2000/ants/v2"

	"github.com/classifierd/classifierd/pkg/metricsmanager"
)

// reasonQueueFull and reasonDenylisted are the metric label values reported
// when a job is dropped before reaching a worker.
const (
	reasonQueueFull     = "queue_full"
	reasonDenylisted    = "denylisted"
	reasonProcessExited = "process_exited"
	reasonCooldown      = "cooldown"
)

// ProcLiveness is the narrow slice of pkg/procreader.Reader the dispatcher
// needs: reading the current comm for the early denylist check, and
// checking whether a pid is still alive before committing to a worker run.
type ProcLiveness interface {
	Comm(pid uint32) (string, bool)
	Alive(pid uint32) bool
}

// ClassifyFunc runs the full C1-C4+C7 pipeline for a single live pid. It is
// injected rather than called directly so the dispatcher's queueing and
// filtering logic can be tested independently of procreader/features/
// inference/pluginregistry.
type ClassifyFunc func(pid uint32)

// Config configures the queue depth and worker count.
type Config struct {
	Workers         int
	QueueDepth      int
	CooldownWindow  time.Duration
	CooldownMaxSize int
}

// DefaultWorkers is NUM_THREADS from the original classifier.cpp.
const DefaultWorkers = 4

// Dispatcher owns the bounded FIFO queue and the worker pool draining it.
type Dispatcher struct {
	cfg      Config
	reader   ProcLiveness
	denylist *Denylist
	classify ClassifyFunc
	metrics  metricsmanager.MetricsManager

	queue    chan Job
	pool     *ants.PoolWithFunc
	cooldown *cooldown
	done     chan struct{}
}

// New constructs a Dispatcher. The worker pool itself is not started until
// Start is called.
func New(cfg Config, reader ProcLiveness, denylist *Denylist, classify ClassifyFunc, metrics metricsmanager.MetricsManager) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 256
	}
	return &Dispatcher{
		cfg:      cfg,
		reader:   reader,
		denylist: denylist,
		classify: classify,
		metrics:  metrics,
		queue:    make(chan Job, cfg.QueueDepth),
		cooldown: newCooldown(cfg.CooldownMaxSize, cfg.CooldownWindow),
		done:     make(chan struct{}),
	}
}

// Start spins up the ants worker pool and the dispatch loop that feeds it
// from the bounded queue.
func (d *Dispatcher) Start() error {
	pool, err := ants.NewPoolWithFunc(d.cfg.Workers, func(i interface{}) {
		job := i.(Job)
		d.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	d.pool = pool

	go d.dispatchLoop()
	return nil
}

// dispatchLoop drains the queue into the pool, blocking on Invoke until a
// worker slot frees; the buffered channel is the bounded FIFO queue, the
// pool enforces the fixed worker count, mirroring the condvar-guarded
// std::queue<int> feeding classifier.cpp's fixed thread_pool.
func (d *Dispatcher) dispatchLoop() {
	for {
		select {
		case job, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.pool.Invoke(job); err != nil {
				logger.L().Warning("worker pool rejected job", helpers.Int("pid", int(job.PID)), helpers.Error(err))
			}
		case <-d.done:
			return
		}
	}
}

// Enqueue handles a PROC_EVENT_EXEC notification (classifier.cpp's
// handle_proc_ev PROC_EVENT_EXEC case): it re-reads comm for the early
// denylist check, applies the cooldown window, and pushes onto the bounded
// queue, dropping (with a metric) rather than blocking when the queue is
// full.
func (d *Dispatcher) Enqueue(pid uint32) {
	comm, ok := d.reader.Comm(pid)
	if !ok {
		logger.L().Debug("process exited before initial check, skipping", helpers.Int("pid", int(pid)))
		return
	}
	if d.denylist.Contains(comm) {
		logger.L().Debug("ignoring denylisted process", helpers.String("comm", comm), helpers.Int("pid", int(pid)))
		d.metrics.ReportJobDropped(reasonDenylisted)
		return
	}
	if d.cooldown.markIfAbsent(pid) {
		d.metrics.ReportJobDropped(reasonCooldown)
		return
	}

	job := Job{PID: pid, EnqueuedAt: time.Now(), CorrelationID: uuid.New()}
	select {
	case d.queue <- job:
		d.metrics.ReportJobEnqueued()
	default:
		logger.L().Warning("job queue full, dropping job", helpers.Int("pid", int(pid)))
		d.metrics.ReportJobDropped(reasonQueueFull)
	}
}

// runJob re-checks liveness and the denylist immediately before running the
// classification pipeline (spec.md §4.4's predict-time liveness re-check,
// and the dispatcher's own denylist re-check at worker start), matching
// classify_process's is_process_alive + ignored_processes guards.
func (d *Dispatcher) runJob(job Job) {
	if !d.reader.Alive(job.PID) {
		d.metrics.ReportJobDropped(reasonProcessExited)
		return
	}
	comm, ok := d.reader.Comm(job.PID)
	if ok && d.denylist.Contains(comm) {
		d.metrics.ReportJobDropped(reasonDenylisted)
		return
	}

	logger.L().Debug("starting classification",
		helpers.Int("pid", int(job.PID)), helpers.String("correlationId", job.CorrelationID.String()))
	d.classify(job.PID)
}

// Stop stops accepting new dispatch-loop iterations and releases the
// worker pool, waiting up to 30 seconds for in-flight jobs to finish.
func (d *Dispatcher) Stop() {
	close(d.done)
	if d.pool != nil {
		if err := d.pool.ReleaseTimeout(30 * time.Second); err != nil {
			logger.L().Warning("worker pool did not drain before shutdown", helpers.Error(err))
		}
	}
}
