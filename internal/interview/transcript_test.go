package interview

import (
	"strings"
	"sync"
	"testing"

	"github.com/yoockh/yoointerview/internal/models"
)

func TestTranscript_AppendAssignsSequence(t *testing.T) {
	tr := NewTranscript()

	for i, text := range []string{"Hello", "Hi there", "Tell me about yourself"} {
		sp := models.SpeakerAssistant
		if i%2 == 1 {
			sp = models.SpeakerCandidate
		}
		u, err := tr.Append(sp, text, models.SourceText)
		if err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
		if u.Seq != i+1 {
			t.Fatalf("seq = %d, want %d", u.Seq, i+1)
		}
	}
	if tr.Len() != 3 {
		t.Fatalf("len = %d, want 3", tr.Len())
	}
}

func TestTranscript_RejectsEmpty(t *testing.T) {
	tr := NewTranscript()
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := tr.Append(models.SpeakerCandidate, text, models.SourceText); err != ErrEmptyUtterance {
			t.Fatalf("Append(%q) err = %v, want ErrEmptyUtterance", text, err)
		}
	}
	if tr.Len() != 0 {
		t.Fatalf("len = %d, want 0", tr.Len())
	}
}

func TestTranscript_FlattenOneLinePerUtterance(t *testing.T) {
	tr := NewTranscript()
	inputs := []string{"Welcome", "line one \r\n\n line two", "  spaced   out\tkept  ", "Next question?"}
	for i, text := range inputs {
		sp := models.SpeakerAssistant
		if i%2 == 1 {
			sp = models.SpeakerCandidate
		}
		if _, err := tr.Append(sp, text, models.SourceText); err != nil {
			t.Fatal(err)
		}
	}

	lines := strings.Split(tr.Flatten(), "\n")
	if len(lines) != len(inputs) {
		t.Fatalf("lines = %d, want %d: %q", len(lines), len(inputs), tr.Flatten())
	}
	want := []string{"AI: Welcome", "You: line one line two", "AI: spaced   out\tkept", "You: Next question?"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTranscript_FlattenEmpty(t *testing.T) {
	if got := NewTranscript().Flatten(); got != "" {
		t.Fatalf("Flatten() = %q, want empty", got)
	}
}

func TestTranscript_UtterancesIsCopy(t *testing.T) {
	tr := NewTranscript()
	_, _ = tr.Append(models.SpeakerAssistant, "Hello", models.SourceIntro)

	us := tr.Utterances()
	us[0].Text = "mutated"
	if tr.Utterances()[0].Text != "Hello" {
		t.Fatalf("Utterances leaked internal slice")
	}
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := NewTranscript()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tr.Append(models.SpeakerCandidate, "answer", models.SourceSpeech)
		}()
	}
	wg.Wait()

	us := tr.Utterances()
	if len(us) != 50 {
		t.Fatalf("len = %d, want 50", len(us))
	}
	for i, u := range us {
		if u.Seq != i+1 {
			t.Fatalf("seq at %d = %d", i, u.Seq)
		}
	}
	if tr.Count(models.SpeakerCandidate) != 50 || tr.Count(models.SpeakerAssistant) != 0 {
		t.Fatalf("unexpected counts")
	}
}
