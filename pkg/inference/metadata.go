// Package inference implements the C4 Inference Engine: loading the model
// artifacts, assembling a FeatureVector, and running a single-flight predict
// call (spec.md §4.4), grounded on ml_inference.h/ml_inference.cpp.
package inference

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/classifierd/classifierd/pkg/tokennorm"
)

// Metadata is the model metadata manifest (spec.md §3 ModelArtifacts,
// §6 "meta.json"). Unlike the original's fragile substring search over the
// raw file content, this is parsed with encoding/json (§9 redesign flag:
// "replace the brittle hand-rolled JSON substring parser with a real
// structured parser").
type Metadata struct {
	Classes     []string         `json:"classes"`
	TextCols    []tokennorm.Label `json:"text_cols"`
	NumericCols []string         `json:"numeric_cols"`
}

// LoadMetadata parses a meta.json manifest. A missing file, malformed JSON,
// or a manifest missing classes/text_cols/numeric_cols is a startup-fatal
// error (spec.md §4.4 step 1, §7 "startup fatal").
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading metadata manifest %s: %w", path, err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parsing metadata manifest %s: %w", path, err)
	}
	if len(meta.Classes) == 0 || len(meta.TextCols) == 0 || len(meta.NumericCols) == 0 {
		return Metadata{}, fmt.Errorf("metadata manifest %s missing classes/text_cols/numeric_cols", path)
	}
	return meta, nil
}
