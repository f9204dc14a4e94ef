package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLinearClassifierParsesWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"weights":[[1,0],[0,1]],"bias":[0,0]}`), 0o600))

	c, err := LoadLinearClassifier(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.FeatureCount())
}

func TestLoadLinearClassifierRejectsMismatchedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"weights":[[1,0]],"bias":[0,0]}`), 0o600))

	_, err := LoadLinearClassifier(path)
	assert.Error(t, err)
}

func TestLinearClassifierClassifyReturnsSoftmaxSummingToOne(t *testing.T) {
	c := &LinearClassifier{Weights: [][]float64{{1, 0}, {0, 1}}, Bias: []float64{0, 0}}

	probs, err := c.Classify([]float64{5, 0})
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.Greater(t, probs[0], probs[1])

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLinearClassifierClassifyRejectsWrongFeatureCount(t *testing.T) {
	c := &LinearClassifier{Weights: [][]float64{{1, 0}}, Bias: []float64{0}}
	_, err := c.Classify([]float64{1, 2, 3})
	assert.Error(t, err)
}
