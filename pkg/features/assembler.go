package features

import (
	"strconv"
	"strings"

	"github.com/classifierd/classifierd/pkg/tokennorm"
)

// RawFeatureMap is the model's raw-feature map (spec.md §3): text labels
// keyed by tokennorm.Label hold a single space-joined string of normalized
// tokens; numeric labels named by the model metadata hold the decimal
// string form of a Provider's result. A missing key is semantically empty
// text or 0.0 numeric, never an error.
type RawFeatureMap map[string]string

// TextTokens supplies the normalized token list for each text label, the
// output of pkg/procreader + pkg/tokennorm for one pid.
type TextTokens map[tokennorm.Label][]string

// Assemble builds a RawFeatureMap for one pid: concatenating the token list
// for every label in textCols with single-space separators, and resolving
// every name in numericCols through reg, storing its decimal string form
// (spec.md §4.3).
func Assemble(pid uint32, tokens TextTokens, textCols []tokennorm.Label, numericCols []string, reg Registry) RawFeatureMap {
	raw := make(RawFeatureMap, len(textCols)+len(numericCols))

	for _, label := range textCols {
		raw[label.String()] = strings.Join(tokens[label], " ")
	}

	for _, col := range numericCols {
		value := 0.0
		if provider, ok := reg[col]; ok {
			if v, ok := provider(pid); ok {
				value = v
			}
		}
		raw[col] = strconv.FormatFloat(value, 'f', -1, 64)
	}

	return raw
}

// HasSufficientFeatures implements the "sufficient features" gate
// (spec.md §4.3): the job proceeds to inference iff at least one text
// column is non-empty or one numeric column is non-zero.
func HasSufficientFeatures(raw RawFeatureMap, textCols []tokennorm.Label, numericCols []string) bool {
	for _, label := range textCols {
		if strings.TrimSpace(raw[label.String()]) != "" {
			return true
		}
	}
	for _, col := range numericCols {
		v, err := strconv.ParseFloat(raw[col], 64)
		if err == nil && v != 0 {
			return true
		}
	}
	return false
}
