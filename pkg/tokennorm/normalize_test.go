package tokennorm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeIgnoreFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore-tokens.txt")
	require := os.WriteFile(path, []byte(contents), 0o600)
	if require != nil {
		t.Fatal(require)
	}
	return path
}

func TestApplyDropsStopwords(t *testing.T) {
	path := writeIgnoreFile(t, "comm: systemd, kthreadd\n")
	ignore, err := LoadIgnoreMap(path)
	assert.NoError(t, err)

	got := Apply([]string{"systemd", "nginx"}, Options{Label: LabelComm, MinLen: 1}, ignore)
	assert.Equal(t, []string{"nginx"}, got)
}

func TestCollapseNumericIsIdempotent(t *testing.T) {
	inputs := []string{
		"abc", "0x1234", "550e8400-e29b-41d4-a716-446655440000", "42", "-17", "deadbeef1234",
	}
	for _, in := range inputs {
		once := CollapseNumeric(in)
		twice := CollapseNumeric(once)
		assert.Equal(t, once, twice, "collapsing %q twice should be stable", in)
	}
}

func TestCollapseNumericOrderAvoidsDoubleSubstitution(t *testing.T) {
	uuid := "550e8400-e29b-41d4-a716-446655440000"
	assert.Equal(t, "n", CollapseNumeric(uuid))
}

// S6 — normalizer law from spec.md §8.
func TestApplyCmdlineScenarioS6(t *testing.T) {
	tokens := []string{"abc", "0x1234", "550e8400-e29b-41d4-a716-446655440000", "42", "--foo=bar"}
	opts := Options{
		Label:           LabelCmdline,
		CollapseNumeric: true,
		StripDoubleDash: true,
		PruneJunk:       true,
		MinLen:          2,
	}
	got := Apply(tokens, opts, nil)
	assert.Equal(t, []string{"abc", "n", "n", "foo=bar"}, got)
}

func TestApplyNoTokenIsSingleCharOrEmpty(t *testing.T) {
	tokens := []string{"a", "bb", "", "c", "ddd"}
	got := Apply(tokens, Options{Label: LabelComm, MinLen: 2}, nil)
	for _, tok := range got {
		assert.NotEmpty(t, tok)
		assert.Greater(t, len(tok), 1)
	}
	assert.Equal(t, []string{"bb", "ddd"}, got)
}

func TestApplyLowercasingIsIdempotent(t *testing.T) {
	tokens := []string{"MixedCase", "ALLCAPS"}
	once := Apply(tokens, Options{Label: LabelComm, MinLen: 1}, nil)
	twice := Apply(once, Options{Label: LabelComm, MinLen: 1}, nil)
	assert.Equal(t, once, twice)
}

func TestNormalizeLibraryName(t *testing.T) {
	cases := map[string]string{
		"libfoo.so.1.2.3": "libfoo",
		"libbar.so":       "libbar",
		"  libbaz.so  ":   "libbaz",
		"so":              "",
		"libqux-":         "libqux",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLibraryName(in), "input=%q", in)
	}
}

func TestStripDatesAndTimes(t *testing.T) {
	in := "opened at 13:45:02 on 26/11/2025 for Nov 26, 2025 read"
	got := StripDatesAndTimes(in)
	assert.NotContains(t, got, "13:45")
	assert.NotContains(t, got, "26/11/2025")
}
