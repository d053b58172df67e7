// Package scoring maps a finished transcript to the authoritative 0-10
// rating. The model's own rating is never used.
package scoring

import "strings"

// MaxScore is the highest value Score can return.
const MaxScore = 10

// step is the inclusive lower bound of lines required for score.
type step struct {
	minLines int
	score    int
}

// table must stay sorted by minLines ascending with non-decreasing scores.
var table = []step{
	{minLines: 7, score: 1},
	{minLines: 10, score: 2},
	{minLines: 15, score: 3},
	{minLines: 20, score: 4},
	{minLines: 25, score: 5},
	{minLines: 30, score: 6},
	{minLines: 35, score: 7},
	{minLines: 40, score: 8},
}

// Score returns the rating for a transcript of n non-empty lines. Negative n
// is treated as zero.
func Score(n int) int {
	s := 0
	for _, st := range table {
		if n < st.minLines {
			break
		}
		s = st.score
	}
	return s
}

// CountLines counts the non-empty trimmed lines of a flattened transcript.
func CountLines(transcript string) int {
	n := 0
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func ScoreTranscript(transcript string) int {
	return Score(CountLines(transcript))
}

// Label is the human-readable band for a score.
func Label(score int) string {
	switch {
	case score >= 9:
		return "Excellent"
	case score >= 7:
		return "Very Good"
	case score >= 5:
		return "Good"
	case score >= 3:
		return "Satisfactory"
	case score >= 1:
		return "Needs Improvement"
	default:
		return "Poor"
	}
}
