package scoring

import (
	"strings"
	"testing"
)

func TestScoreIsMonotonicAndBounded(t *testing.T) {
	prev := Score(0)
	for n := 1; n <= 200; n++ {
		got := Score(n)
		if got < prev {
			t.Fatalf("score decreased at n=%d: %d -> %d", n, prev, got)
		}
		if got < 0 || got > MaxScore {
			t.Fatalf("score out of range at n=%d: %d", n, got)
		}
		prev = got
	}
}

func TestScoreIsTotalAndDeterministic(t *testing.T) {
	for _, n := range []int{-5, 0, 1, 6, 7, 39, 40, 1 << 20} {
		a, b := Score(n), Score(n)
		if a != b {
			t.Fatalf("non-deterministic score for %d: %d vs %d", n, a, b)
		}
	}
	if Score(-5) != 0 {
		t.Fatalf("negative input should score 0")
	}
}

func TestShortTranscriptsScoreZeroOrOne(t *testing.T) {
	for n := 0; n < 7; n++ {
		if s := Score(n); s != 0 && s != 1 {
			t.Fatalf("n=%d: expected 0 or 1, got %d", n, s)
		}
	}
}

func TestTableBoundaries(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{6, 0}, {7, 1}, {9, 1}, {10, 2}, {14, 2}, {15, 3},
		{20, 4}, {25, 5}, {30, 6}, {35, 7}, {39, 7}, {40, 8}, {80, 8},
	}
	for _, tc := range cases {
		if got := Score(tc.lines); got != tc.want {
			t.Fatalf("Score(%d) = %d, want %d", tc.lines, got, tc.want)
		}
	}
}

func TestEightAlternatingLinesNeedImprovement(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			b.WriteString("AI: question\n")
		} else {
			b.WriteString("You: answer\n")
		}
	}
	s := ScoreTranscript(b.String())
	if got := Label(s); got != "Needs Improvement" {
		t.Fatalf("expected Needs Improvement, got %q (score %d)", got, s)
	}
}

func TestCountLinesSkipsBlank(t *testing.T) {
	got := CountLines("AI: hi\n\n   \nYou: hello\n")
	if got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
	if CountLines("") != 0 {
		t.Fatalf("empty transcript should have 0 lines")
	}
}
