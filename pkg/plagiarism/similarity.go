package plagiarism

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the ratio above which two texts are treated as the same submission.
const DefaultThreshold = 0.85

// Match describes the first corpus entry that exceeded the threshold.
type Match struct {
	Index int
	Ratio float64
}

// Checker flags near-duplicate submissions using a longest-matching-blocks similarity ratio.
type Checker struct {
	Threshold float64
}

// NewChecker returns a Checker, falling back to DefaultThreshold for out-of-range values.
func NewChecker(threshold float64) Checker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Checker{Threshold: threshold}
}

// Ratio returns the character-level similarity of a and b in [0,1].
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// IsDuplicate reports whether candidate is a near-duplicate of any corpus entry.
func (c Checker) IsDuplicate(candidate string, corpus []string) bool {
	_, found := c.FirstMatch(candidate, corpus)
	return found
}

// FirstMatch scans corpus in order and stops at the first entry whose ratio exceeds the threshold.
func (c Checker) FirstMatch(candidate string, corpus []string) (Match, bool) {
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	chars := splitChars(candidate)
	for idx, entry := range corpus {
		ratio := difflib.NewMatcher(chars, splitChars(entry)).Ratio()
		if ratio > threshold {
			return Match{Index: idx, Ratio: ratio}, true
		}
	}

	return Match{}, false
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}
