package inference

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classifierd/classifierd/pkg/features"
	"github.com/classifierd/classifierd/pkg/tokennorm"
)

type fakeEmbedder struct{ dim int }

func (f fakeEmbedder) Dim() int { return f.dim }
func (f fakeEmbedder) Embed(text string) []float64 {
	v := make([]float64, f.dim)
	if text != "" {
		v[0] = 1
	}
	return v
}

type fakeClassifier struct {
	featureCount int
	probs        []float64
	calls        int
	mu           sync.Mutex
}

func (f *fakeClassifier) FeatureCount() int { return f.featureCount }
func (f *fakeClassifier) Classify(feat []float64) ([]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.probs, nil
}

func newTestEngine(t *testing.T, numericCols []string, classes []string, probs []float64, dim int) (*Engine, *fakeClassifier) {
	t.Helper()
	textCols := []tokennorm.Label{tokennorm.LabelCmdline}
	cls := &fakeClassifier{featureCount: len(numericCols) + dim, probs: probs}
	eng, err := NewEngine(Artifacts{
		Embedder:   fakeEmbedder{dim: dim},
		Classifier: cls,
		Meta:       Metadata{Classes: classes, TextCols: textCols, NumericCols: numericCols},
	})
	require.NoError(t, err)
	return eng, cls
}

func TestNewEngineRejectsFeatureCountMismatch(t *testing.T) {
	_, err := NewEngine(Artifacts{
		Embedder:   fakeEmbedder{dim: 4},
		Classifier: &fakeClassifier{featureCount: 99},
		Meta:       Metadata{Classes: []string{"a"}, TextCols: []tokennorm.Label{tokennorm.LabelCmdline}, NumericCols: []string{"rss_bytes"}},
	})
	assert.Error(t, err)
}

func TestBuildFeatureVectorLength(t *testing.T) {
	eng, _ := newTestEngine(t, []string{"rss_bytes", "thread_count"}, []string{"a", "b"}, []float64{0.2, 0.8}, 8)
	vec := eng.BuildFeatureVector(features.RawFeatureMap{"rss_bytes": "100", "thread_count": "4", "cmdline": "gst launch"})
	assert.Len(t, vec, 2+8)
}

func TestBuildFeatureVectorZeroEmbeddingForEmptyText(t *testing.T) {
	eng, _ := newTestEngine(t, []string{"rss_bytes"}, []string{"a", "b"}, []float64{0.2, 0.8}, 4)
	vec := eng.BuildFeatureVector(features.RawFeatureMap{"rss_bytes": "100"})
	for _, v := range vec[1:] {
		assert.Zero(t, v)
	}
}

func TestPredictReturnsArgmaxClass(t *testing.T) {
	eng, _ := newTestEngine(t, []string{"rss_bytes"}, []string{"low", "high"}, []float64{0.1, 0.9}, 4)
	label, err := eng.Predict(features.RawFeatureMap{"rss_bytes": "100", "cmdline": "gst launch"})
	require.NoError(t, err)
	assert.Equal(t, "high", label)
}

func TestPredictSerializesConcurrentCalls(t *testing.T) {
	eng, cls := newTestEngine(t, []string{"rss_bytes"}, []string{"a", "b"}, []float64{0.5, 0.5}, 4)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Predict(features.RawFeatureMap{"rss_bytes": "1", "cmdline": "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, cls.calls)
}
