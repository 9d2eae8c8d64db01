package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractParsesScoreToken(t *testing.T) {
	cases := map[string]int{
		"Nice work! Score: 8/10":                8,
		"score 0/10, keep trying":               0,
		"I'd give this a 10 / 10.":              10,
		"First 7/10 then 9/10":                  7,
		"Great loops.\nScore:  6 /10":           6,
		"You earned 4/ 10 points on this task.": 4,
		"Score: 8\u00a0/\u00a010":              8,
		"Score: 3\u202f/10":                     3,
		"\t7 /\n10":                             7,
	}

	for feedback, expected := range cases {
		require.Equal(t, expected, Extract(feedback), feedback)
	}
}

func TestExtractClampsAboveMaximum(t *testing.T) {
	require.Equal(t, MaxScore, Extract("Outstanding, 15/10!"))
	require.Equal(t, MaxScore, Extract("Score: 99/10"))
}

func TestExtractFallsBackWithoutToken(t *testing.T) {
	score, found := ExtractWithFound("Good effort, but no score here.")
	require.False(t, found)
	require.Equal(t, FallbackScore, score)
	require.Equal(t, FallbackScore, Extract(""))
}

func TestExtractReportsParsedFive(t *testing.T) {
	score, found := ExtractWithFound("Score: 5/10")
	require.True(t, found)
	require.Equal(t, 5, score)
}

func TestExtractIsDeterministic(t *testing.T) {
	feedback := "Readable code. Score: 9/10"
	first := Extract(feedback)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Extract(feedback))
	}
}
