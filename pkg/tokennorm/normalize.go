// Package tokennorm implements the deterministic token-normalization
// pipeline applied to every token the proc reader extracts, before it
// reaches the feature assembler (spec.md §4.2).
package tokennorm

import (
	"regexp"
	"strings"
)

var (
	uuidRe    = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	hexRunRe  = regexp.MustCompile(`\b[0-9a-fA-F]{4,}\b`)
	decimalRe = regexp.MustCompile(`\b[-+]?[0-9]+\b`)

	allDigitsRe = regexp.MustCompile(`^[0-9]+$`)
	allAlnumRe  = regexp.MustCompile(`[A-Za-z0-9]`)

	dateNumericRe = regexp.MustCompile(`(?i)\b[0-9]{1,2}[-/.][0-9]{1,2}[-/.][0-9]{2,4}\b|\b[0-9]{4}[-/.][0-9]{1,2}[-/.][0-9]{1,2}\b`)
	month         = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	dateMonthRe   = regexp.MustCompile(`(?i)\b` + month + `\s+[0-9]{1,2}(?:,\s*)?\s+[0-9]{2,4}\b|\b[0-9]{1,2}\s+` + month + `(?:,\s*)?\s+[0-9]{2,4}\b`)
	timeHMRe      = regexp.MustCompile(`(?i)\b[0-9]{1,2}:[0-9]{2}(:[0-9]{2})?\s*(AM|PM)?\b`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)

	bracketedTagRe = regexp.MustCompile(`(?i)\[\s*(info|warn|error|debug|trace)?\s*\]?`)
)

// CollapseNumeric replaces, in order, canonical UUIDs, hex runs of length >=4,
// and signed decimal integers with the literal token "n" (spec.md §4.2).
// Order matters: the UUID pass must run before the hex pass so a UUID's
// hyphen-separated hex groups are not partially collapsed first.
func CollapseNumeric(tok string) string {
	tok = uuidRe.ReplaceAllString(tok, "n")
	tok = hexRunRe.ReplaceAllString(tok, "n")
	tok = decimalRe.ReplaceAllString(tok, "n")
	return tok
}

// NormalizeLibraryName canonicalizes a shared-library token the way the
// original normalizeLibraryName does: truncate at ".so", strip trailing
// digits, strip trailing separators, drop the bare token "so".
func NormalizeLibraryName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if idx := strings.Index(s, ".so"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimRight(s, "0123456789")
	s = strings.TrimRight(s, "-_.")
	s = strings.TrimSpace(s)
	if s == "so" {
		return ""
	}
	return s
}

// StripDatesAndTimes removes numeric dates, month-name dates, and clock
// times from a token, collapsing any resulting run of spaces (spec.md §4.2,
// applied to fds).
func StripDatesAndTimes(s string) string {
	s = dateNumericRe.ReplaceAllString(s, "")
	s = dateMonthRe.ReplaceAllString(s, "")
	s = timeHMRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return s
}

// IsAllSpecialChars reports whether tok has no alphanumeric character.
func IsAllSpecialChars(tok string) bool {
	if tok == "" {
		return false
	}
	return !allAlnumRe.MatchString(tok)
}

// IsDigitsOnly reports whether tok is entirely decimal digits.
func IsDigitsOnly(tok string) bool {
	return tok != "" && allDigitsRe.MatchString(tok)
}

// HasDigit reports whether tok contains at least one decimal digit.
func HasDigit(tok string) bool {
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// RemovePunctuation drops every rune in tok that is ASCII punctuation.
func RemovePunctuation(tok string) string {
	var b strings.Builder
	b.Grow(len(tok))
	for _, r := range tok {
		if isPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isPunct(r rune) bool {
	switch {
	case r >= '!' && r <= '/':
		return true
	case r >= ':' && r <= '@':
		return true
	case r >= '[' && r <= '`':
		return true
	case r >= '{' && r <= '~':
		return true
	}
	return false
}

// StripBracketedLevelTags removes "[info]"/"[warn]"/"[error]"/"[debug]"/
// "[trace]" tags (case-insensitive, bracket optional on the close side, as
// the original regex tolerates) ahead of log-line tokenization.
func StripBracketedLevelTags(s string) string {
	return bracketedTagRe.ReplaceAllString(s, "")
}

// Options configures which steps of the pipeline run for a given label.
type Options struct {
	Label             Label
	CollapseNumeric   bool
	CanonicalizeLib   bool
	StripDatesTimes   bool
	PruneJunk         bool
	StripDoubleDash   bool
	StripDoubleQuotes bool
	MinLen            int
}

// DefaultOptions returns the C2 pipeline configuration spec.md §4.2 assigns
// to each label. Number-and-hex collapsing is documented for
// {cgroup,comm,maps,environ,exe}; cmdline is included too, following the
// worked S6 scenario in spec.md §8 rather than the narrower prose list.
// Punctuation/length pruning
// is unscoped in the prose, so it runs for every label.
func DefaultOptions(l Label) Options {
	opts := Options{Label: l, PruneJunk: true, MinLen: 2}
	switch l {
	case LabelAttr:
		// lowercase + stopword + prune only.
	case LabelCgroup:
		opts.CollapseNumeric = true
	case LabelCmdline:
		opts.CollapseNumeric = true
		opts.StripDoubleDash = true
	case LabelComm:
		opts.CollapseNumeric = true
	case LabelMaps:
		opts.CollapseNumeric = true
	case LabelFDs:
		// date/time stripping already applied at extraction time (procreader).
	case LabelEnviron:
		opts.CollapseNumeric = true
		opts.MinLen = 1 // extraction already dropped digit-bearing/all-special tokens.
	case LabelExe:
		opts.CollapseNumeric = true
	case LabelLogs:
		opts.StripDoubleQuotes = true
	}
	return opts
}

// Apply runs the normalization pipeline on tokens for the given options,
// shrinking the slice; it never grows it and never errors (spec.md §4.2:
// "the normalizer never throws; it simply shrinks the token list").
func Apply(tokens []string, opts Options, ignore *IgnoreMap) []string {
	minLen := opts.MinLen
	if minLen == 0 {
		minLen = 2
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)

		if opts.StripDoubleQuotes {
			tok = strings.ReplaceAll(tok, `"`, "")
		}
		if opts.StripDoubleDash {
			if tok == "--" {
				continue
			}
			tok = strings.ReplaceAll(tok, "--", "")
		}
		if opts.StripDatesTimes {
			tok = StripDatesAndTimes(tok)
			tok = strings.TrimSpace(tok)
		}
		if tok == "" {
			continue
		}

		if ignore != nil && ignore.Contains(opts.Label, tok) {
			continue
		}

		if opts.CollapseNumeric {
			tok = CollapseNumeric(tok)
		}
		if opts.CanonicalizeLib {
			tok = NormalizeLibraryName(tok)
		}
		if opts.PruneJunk {
			if IsAllSpecialChars(tok) {
				continue
			}
			if IsDigitsOnly(tok) {
				continue
			}
		}

		if len(tok) < minLen {
			continue
		}

		out = append(out, tok)
	}
	return out
}
