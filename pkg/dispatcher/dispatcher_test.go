package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classifierd/classifierd/pkg/metricsmanager"
)

type fakeReader struct {
	mu    sync.Mutex
	comm  map[uint32]string
	alive map[uint32]bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{comm: map[uint32]string{}, alive: map[uint32]bool{}}
}

func (f *fakeReader) Comm(pid uint32) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comm[pid]
	return c, ok
}

func (f *fakeReader) Alive(pid uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[pid]
}

func (f *fakeReader) set(pid uint32, comm string, alive bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comm[pid] = comm
	f.alive[pid] = alive
}

func newDispatcherForTest(t *testing.T, reader *fakeReader, denylist *Denylist, classified chan uint32) (*Dispatcher, *metricsmanager.Mock) {
	t.Helper()
	metrics := metricsmanager.NewMock()
	d := New(Config{Workers: 2, QueueDepth: 4, CooldownWindow: 50 * time.Millisecond}, reader, denylist, func(pid uint32) {
		classified <- pid
	}, metrics)
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	return d, metrics
}

func TestEnqueueSkipsExitedProcess(t *testing.T) {
	reader := newFakeReader()
	classified := make(chan uint32, 1)
	d, metrics := newDispatcherForTest(t, reader, &Denylist{}, classified)

	d.Enqueue(42)

	select {
	case <-classified:
		t.Fatal("classify should not run for a process with no comm")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 0, metrics.JobsEnqueued)
}

func TestEnqueueSkipsDenylistedProcess(t *testing.T) {
	reader := newFakeReader()
	reader.set(42, "cron", true)
	classified := make(chan uint32, 1)
	d, metrics := newDispatcherForTest(t, reader, LoadDenylistFromNames("cron"), classified)

	d.Enqueue(42)

	select {
	case <-classified:
		t.Fatal("classify should not run for a denylisted process")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, metrics.JobsDropped.Get(reasonDenylisted))
}

func TestEnqueueClassifiesAllowedLiveProcess(t *testing.T) {
	reader := newFakeReader()
	reader.set(42, "gst-launch-1.0", true)
	classified := make(chan uint32, 1)
	d, metrics := newDispatcherForTest(t, reader, &Denylist{}, classified)

	d.Enqueue(42)

	select {
	case pid := <-classified:
		assert.Equal(t, uint32(42), pid)
	case <-time.After(time.Second):
		t.Fatal("classify was never invoked")
	}
	assert.Equal(t, 1, metrics.JobsEnqueued)
}

func TestRunJobSkipsProcessThatExitedBeforeWorkerStart(t *testing.T) {
	reader := newFakeReader()
	reader.set(42, "gst-launch-1.0", false)
	classified := make(chan uint32, 1)
	metrics := metricsmanager.NewMock()
	d := &Dispatcher{reader: reader, denylist: &Denylist{}, classify: func(pid uint32) { classified <- pid }, metrics: metrics}

	d.runJob(Job{PID: 42})

	select {
	case <-classified:
		t.Fatal("classify should not run for a dead process")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEnqueueDedupesWithinCooldownWindow(t *testing.T) {
	reader := newFakeReader()
	reader.set(42, "gst-launch-1.0", true)
	classified := make(chan uint32, 4)
	d, metrics := newDispatcherForTest(t, reader, &Denylist{}, classified)

	d.Enqueue(42)
	d.Enqueue(42)

	<-classified
	select {
	case <-classified:
		t.Fatal("second enqueue within the cooldown window should not classify again")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, metrics.JobsDropped.Get(reasonCooldown))
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	reader := newFakeReader()
	for pid := uint32(1); pid <= 10; pid++ {
		reader.set(pid, "gst-launch-1.0", true)
	}
	classified := make(chan uint32, 10)
	metrics := metricsmanager.NewMock()
	// The single worker sleeps for a second per job, so the bounded queue
	// fills immediately.
	d := New(Config{Workers: 1, QueueDepth: 1}, reader, &Denylist{}, func(pid uint32) {
		time.Sleep(time.Second)
		classified <- pid
	}, metrics)
	require.NoError(t, d.Start())
	defer d.Stop()

	for pid := uint32(1); pid <= 10; pid++ {
		d.Enqueue(pid)
	}

	assert.GreaterOrEqual(t, metrics.JobsDropped.Get(reasonQueueFull), 1)
}
