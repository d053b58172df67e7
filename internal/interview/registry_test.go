package interview

import (
	"context"
	"testing"

	"github.com/yoockh/yoointerview/internal/models"
)

func TestRegistry_OneLiveControllerPerInterview(t *testing.T) {
	r := NewRegistry()
	a := newHarness(t, nil).c
	b := newHarness(t, nil).c
	id := a.Snapshot().InterviewID

	if err := r.Register(id, a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(id, b); err != ErrAlreadyLive {
		t.Fatalf("err = %v, want ErrAlreadyLive", err)
	}

	_, _ = a.End(context.Background(), models.EndReasonUser)
	if err := r.Register(id, b); err != nil {
		t.Fatalf("register after end: %v", err)
	}

	// Removing a stale controller keeps the current one.
	r.Remove(id, a)
	if got, ok := r.Get(id); !ok || got != b {
		t.Fatalf("stale Remove dropped live controller")
	}
	r.Remove(id, b)
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}
