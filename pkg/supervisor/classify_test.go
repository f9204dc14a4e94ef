package supervisor

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classifierd/classifierd/pkg/config"
	"github.com/classifierd/classifierd/pkg/csvdump"
	"github.com/classifierd/classifierd/pkg/features"
	"github.com/classifierd/classifierd/pkg/inference"
	"github.com/classifierd/classifierd/pkg/metricsmanager"
	"github.com/classifierd/classifierd/pkg/pluginregistry"
	"github.com/classifierd/classifierd/pkg/postprocess/gstreamer"
	"github.com/classifierd/classifierd/pkg/procreader"
	"github.com/classifierd/classifierd/pkg/tokennorm"
	"github.com/classifierd/classifierd/pkg/tuningclient"
)

type fakeEmbedder struct{ dim int }

func (f fakeEmbedder) Dim() int { return f.dim }
func (f fakeEmbedder) Embed(string) []float64 { return make([]float64, f.dim) }

type fakeClassifier struct {
	featureCount int
	winnerIndex  int
	numClasses   int
}

func (f fakeClassifier) FeatureCount() int { return f.featureCount }
func (f fakeClassifier) Classify([]float64) ([]float64, error) {
	probs := make([]float64, f.numClasses)
	probs[f.winnerIndex] = 1
	return probs, nil
}

type recordingTuningClient struct {
	signals []tuningclient.Signal
}

func (r *recordingTuningClient) Publish(sig tuningclient.Signal) {
	r.signals = append(r.signals, sig)
}

// writeFakeProc builds a minimal /proc/<pid> tree for a GStreamer encode
// pipeline with a single worker thread named after its element.
func writeFakeProc(t *testing.T, root string, pid uint32, cmdline, elementThread string) {
	t.Helper()
	pidDir := filepath.Join(root, strconv.FormatUint(uint64(pid), 10))
	require.NoError(t, os.MkdirAll(pidDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pidDir, "comm"), []byte("gst-launch-1.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pidDir, "cmdline"), []byte(cmdline), 0o644))

	taskDir := filepath.Join(pidDir, "task", "1")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(taskDir, "comm"), []byte(elementThread+"\n"), 0o644))
}

func TestClassifyRoutesToGStreamerPostProcessor(t *testing.T) {
	procRoot := t.TempDir()
	pid := uint32(1)
	cmdline := "gst-launch-1.0\x00v4l2src\x00!\x00v4l2h264enc\x00name=enc0\x00!\x00filesink\x00"
	writeFakeProc(t, procRoot, pid, cmdline, "enc0")

	reader := &procreader.Reader{ProcRoot: procRoot}

	registry := pluginregistry.New()
	pluginregistry.ApplyBuiltins(registry, gstreamer.Register(reader))

	textCols := []tokennorm.Label{tokennorm.LabelCmdline}
	numericCols := []string{"rss_bytes"}
	classes := []string{"Other", "gst-launch-1.0"}
	engine, err := inference.NewEngine(inference.Artifacts{
		Embedder:   fakeEmbedder{dim: 2},
		Classifier: fakeClassifier{featureCount: len(numericCols) + 2, winnerIndex: 1, numClasses: len(classes)},
		Meta:       inference.Metadata{Classes: classes, TextCols: textCols, NumericCols: numericCols},
	})
	require.NoError(t, err)

	tuning := &recordingTuningClient{}
	s := &Supervisor{
		cfg:         config.Config{ProcRoot: procRoot, JournalLines: 20},
		reader:      reader,
		engine:      engine,
		registry:    registry,
		providers:   features.NewDefaultRegistry(procRoot),
		tuning:      tuning,
		metrics:     metricsmanager.NewMock(),
		dump:        csvdump.New(t.TempDir(), t.TempDir()),
		perfHandles: make(map[uint32]struct{}),
	}

	s.classify(pid)

	require.Len(t, tuning.signals, 1)
	assert.Equal(t, gstreamer.Encode(gstreamer.Multimedia, gstreamer.CameraEncode), tuning.signals[0].SignalCode)
	assert.Equal(t, uint32(1), tuning.signals[0].Subtype)
	assert.Equal(t, "gst-launch-1.0", tuning.signals[0].Class)
}

func TestClassifySkipsInsufficientFeatures(t *testing.T) {
	procRoot := t.TempDir()
	reader := &procreader.Reader{ProcRoot: procRoot}

	textCols := []tokennorm.Label{tokennorm.LabelCmdline}
	numericCols := []string{"rss_bytes"}
	engine, err := inference.NewEngine(inference.Artifacts{
		Embedder:   fakeEmbedder{dim: 2},
		Classifier: fakeClassifier{featureCount: len(numericCols) + 2, winnerIndex: 0, numClasses: 1},
		Meta:       inference.Metadata{Classes: []string{"Other"}, TextCols: textCols, NumericCols: numericCols},
	})
	require.NoError(t, err)

	tuning := &recordingTuningClient{}
	s := &Supervisor{
		cfg:         config.Config{ProcRoot: procRoot, JournalLines: 20},
		reader:      reader,
		engine:      engine,
		registry:    pluginregistry.New(),
		providers:   features.NewDefaultRegistry(procRoot),
		tuning:      tuning,
		metrics:     metricsmanager.NewMock(),
		dump:        csvdump.New(t.TempDir(), t.TempDir()),
		perfHandles: make(map[uint32]struct{}),
	}

	s.classify(999) // pid never existed on disk: every extraction is empty.

	assert.Empty(t, tuning.signals)
}
