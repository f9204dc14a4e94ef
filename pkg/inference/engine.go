package inference

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"

	"github.com/classifierd/classifierd/pkg/features"
)

// Embedder produces a fixed-dimension sentence embedding for a blob of
// normalized text, the Go analog of fastText's getSentenceVector.
type Embedder interface {
	Embed(text string) []float64
	Dim() int
}

// Classifier scores a feature vector against the model's classes, the Go
// analog of LightGBM's LGBM_BoosterPredictForMat. The result has one
// probability per Metadata.Classes entry, in the same order.
type Classifier interface {
	Classify(features []float64) ([]float64, error)
	FeatureCount() int
}

// Artifacts bundles the three loaded model pieces (spec.md §3
// ModelArtifacts). It is shared read-only across workers once built.
type Artifacts struct {
	Embedder   Embedder
	Classifier Classifier
	Meta       Metadata
}

// Engine runs single-flight inference over a fixed set of Artifacts
// (spec.md §4.4), serializing all predict calls behind one mutex the way
// ml_inference.cpp's predict_mutex_ guards MLInference::predict.
type Engine struct {
	artifacts Artifacts
	mu        sync.Mutex
}

var nonTokenRe = regexp.MustCompile(`[^A-Za-z0-9_:-]+`)

// NewEngine validates that Classifier.FeatureCount() == len(NumericCols) +
// Embedder.Dim() (spec.md §4.4 step 4) before returning a usable Engine; a
// mismatch is a startup-fatal error.
func NewEngine(artifacts Artifacts) (*Engine, error) {
	want := len(artifacts.Meta.NumericCols) + artifacts.Embedder.Dim()
	got := artifacts.Classifier.FeatureCount()
	if want != got {
		return nil, fmt.Errorf("feature count mismatch: metadata+embedder imply %d features, classifier expects %d", want, got)
	}
	return &Engine{artifacts: artifacts}, nil
}

// Metadata returns the loaded model metadata (classes, text/numeric column
// order), read-only for callers assembling a RawFeatureMap.
func (e *Engine) Metadata() Metadata {
	return e.artifacts.Meta
}

// normalizeText lowercases, maps newlines/tabs to spaces, and collapses any
// run of characters outside [A-Za-z0-9_:-] to a single space (spec.md
// §4.4 step 3, the normalize_text Go equivalent).
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = nonTokenRe.ReplaceAllString(s, " ")
	return s
}

// BuildFeatureVector lays out the numeric head in Meta.NumericCols order
// followed by the embedding tail (spec.md §4.4 step 3). Missing or
// non-parseable numeric inputs become 0.0; an entirely empty concatenated
// text blob leaves the embedding tail all zero.
func (e *Engine) BuildFeatureVector(raw features.RawFeatureMap) []float64 {
	numericCols := e.artifacts.Meta.NumericCols
	dim := e.artifacts.Embedder.Dim()
	vec := make([]float64, len(numericCols)+dim)

	for i, col := range numericCols {
		v, err := strconv.ParseFloat(raw[col], 64)
		if err != nil {
			v = 0
		}
		vec[i] = v
	}

	var parts []string
	for _, col := range e.artifacts.Meta.TextCols {
		if v := raw[col.String()]; v != "" {
			parts = append(parts, normalizeText(v))
		}
	}
	text := strings.Join(parts, " ")
	if strings.TrimSpace(text) == "" {
		return vec
	}

	embedding := e.artifacts.Embedder.Embed(text + "\n")
	copy(vec[len(numericCols):], embedding)
	return vec
}

// Predict runs the full C4 pipeline under the engine mutex: build the
// feature vector, assert its length, classify, and return the
// highest-probability class (ml_inference.cpp's predict, argmax over
// result). Errors here are per-job fatal, not daemon fatal (spec.md §7).
func (e *Engine) Predict(raw features.RawFeatureMap) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vec := e.BuildFeatureVector(raw)
	if len(vec) != e.artifacts.Classifier.FeatureCount() {
		return "", fmt.Errorf("feature vector size %d does not match classifier expectation %d", len(vec), e.artifacts.Classifier.FeatureCount())
	}

	probs, err := e.artifacts.Classifier.Classify(vec)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if len(probs) != len(e.artifacts.Meta.Classes) {
		return "", fmt.Errorf("classifier returned %d probabilities, expected %d classes", len(probs), len(e.artifacts.Meta.Classes))
	}

	bestIdx := 0
	bestProb := probs[0]
	for i, p := range probs {
		if p > bestProb {
			bestProb = p
			bestIdx = i
		}
	}

	label := e.artifacts.Meta.Classes[bestIdx]
	logger.L().Debug("prediction complete", helpers.String("class", label), helpers.String("probability", strconv.FormatFloat(bestProb, 'f', 4, 64)))
	return label, nil
}
