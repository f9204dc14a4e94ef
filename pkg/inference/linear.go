package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LinearClassifier is the Classifier used when no native LightGBM binding
// is available: a one-vs-rest linear model with a softmax over the classes,
// loaded from a plain JSON weight dump rather than LightGBM's own model
// file format (SPEC_FULL.md §10 Non-goals: "no bespoke model-format
// parsing beyond delegating to the embedding/classifier interfaces").
type LinearClassifier struct {
	Weights [][]float64 `json:"weights"` // [class][feature]
	Bias    []float64   `json:"bias"`    // [class]
}

// LoadLinearClassifier parses a weight/bias JSON dump and validates its
// shape against itself (non-empty, every row the same width, one bias per
// row).
func LoadLinearClassifier(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classifier model %s: %w", path, err)
	}
	var c LinearClassifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing classifier model %s: %w", path, err)
	}
	if len(c.Weights) == 0 || len(c.Weights) != len(c.Bias) {
		return nil, fmt.Errorf("classifier model %s has mismatched weights/bias shape", path)
	}
	width := len(c.Weights[0])
	for _, row := range c.Weights {
		if len(row) != width {
			return nil, fmt.Errorf("classifier model %s has inconsistent feature width", path)
		}
	}
	return &c, nil
}

func (c *LinearClassifier) FeatureCount() int {
	if len(c.Weights) == 0 {
		return 0
	}
	return len(c.Weights[0])
}

// Classify computes a softmax over the per-class linear scores, giving
// Engine.Predict a probability vector to argmax over, matching the shape
// LightGBM's multiclass objective returns.
func (c *LinearClassifier) Classify(features []float64) ([]float64, error) {
	if len(features) != c.FeatureCount() {
		return nil, fmt.Errorf("expected %d features, got %d", c.FeatureCount(), len(features))
	}
	scores := make([]float64, len(c.Weights))
	maxScore := math.Inf(-1)
	for i, row := range c.Weights {
		var s float64
		for j, w := range row {
			s += w * features[j]
		}
		s += c.Bias[i]
		scores[i] = s
		if s > maxScore {
			maxScore = s
		}
	}

	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}
