package interview

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

var ErrEmptyUtterance = errors.New("utterance text is empty")

// Transcript is the append-only utterance log of one interview.
type Transcript struct {
	mu    sync.RWMutex
	items []models.Utterance
	now   func() time.Time
}

func foldLines(text string) string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func NewTranscript() *Transcript {
	return &Transcript{now: func() time.Time { return time.Now().UTC() }}
}

// Append stores text as the next utterance. Line breaks inside text, with the
// blanks around them, are folded into one space so one utterance always
// flattens to one line. Other spacing is kept; only the ends are trimmed.
func (t *Transcript) Append(speaker models.Speaker, text string, source models.InputSource) (models.Utterance, error) {
	clean := foldLines(text)
	if clean == "" {
		return models.Utterance{}, ErrEmptyUtterance
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	u := models.Utterance{
		Seq:     len(t.items) + 1,
		Speaker: speaker,
		Text:    clean,
		Source:  source,
		At:      t.now(),
	}
	t.items = append(t.items, u)
	return u, nil
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Utterances returns a copy of the log in insertion order.
func (t *Transcript) Utterances() []models.Utterance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Utterance, len(t.items))
	copy(out, t.items)
	return out
}

// Count returns how many utterances speaker produced.
func (t *Transcript) Count(speaker models.Speaker) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, u := range t.items {
		if u.Speaker == speaker {
			n++
		}
	}
	return n
}

// Flatten renders the log as "AI: ..." / "You: ..." lines joined by '\n'.
func (t *Transcript) Flatten() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Flatten(t.items)
}

func Flatten(items []models.Utterance) string {
	var b strings.Builder
	for i, u := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(u.Speaker.Label())
		b.WriteString(": ")
		b.WriteString(u.Text)
	}
	return b.String()
}
