package inference

import "fmt"

// LoadArtifacts loads the embedding model, classifier model, and metadata
// manifest from the artifact directory's three files and builds an Engine,
// enforcing the F == len(numeric_cols) + D invariant (spec.md §4.4). Any
// failure here is startup-fatal (spec.md §7).
func LoadArtifacts(embedderPath, classifierPath, metaPath string) (*Engine, error) {
	meta, err := LoadMetadata(metaPath)
	if err != nil {
		return nil, err
	}
	embedder, err := LoadHashEmbedder(embedderPath)
	if err != nil {
		return nil, err
	}
	classifier, err := LoadLinearClassifier(classifierPath)
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(Artifacts{Embedder: embedder, Classifier: classifier, Meta: meta})
	if err != nil {
		return nil, fmt.Errorf("loading model artifacts: %w", err)
	}
	return engine, nil
}
