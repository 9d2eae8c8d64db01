package scoring

import (
	"regexp"
	"strconv"
)

const (
	// MaxScore is the upper bound of a review score.
	MaxScore = 10
	// FallbackScore is returned when no score token is present in the feedback.
	FallbackScore = 5
)

// Models often put non-breaking spaces around the slash, so \p{Zs} joins \s.
var scorePattern = regexp.MustCompile(`(\d{1,2})[\s\p{Zs}]*/[\s\p{Zs}]*10`)

// Extract returns the first "N/10" score found in feedback, capped at MaxScore.
// Feedback without a score token yields FallbackScore.
func Extract(feedback string) int {
	score, _ := ExtractWithFound(feedback)
	return score
}

// ExtractWithFound behaves like Extract and also reports whether a score token was present.
func ExtractWithFound(feedback string) (int, bool) {
	match := scorePattern.FindStringSubmatch(feedback)
	if match == nil {
		return FallbackScore, false
	}

	score, err := strconv.Atoi(match[1])
	if err != nil {
		return FallbackScore, false
	}
	if score > MaxScore {
		score = MaxScore
	}

	return score, true
}
