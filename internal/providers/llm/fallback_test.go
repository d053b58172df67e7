package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yoockh/yoointerview/internal/utils"
)

type stubProvider struct {
	text   string
	frags  []string
	err    error
	calls  int
	closed bool
}

func (s *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubProvider) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	s.calls++
	out := make(chan string, len(s.frags))
	errs := make(chan error, 1)
	for _, f := range s.frags {
		out <- f
	}
	if s.err != nil {
		errs <- s.err
	}
	close(out)
	close(errs)
	return out, errs
}

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func drain(chunks <-chan string, errs <-chan error) (string, error) {
	var b strings.Builder
	for c := range chunks {
		b.WriteString(c)
	}
	return b.String(), <-errs
}

func TestFallback_QuotaMovesToNextCredential(t *testing.T) {
	primary := &stubProvider{err: errors.New("Error 429, Message: Resource has been exhausted (e.g. check quota)., Status: RESOURCE_EXHAUSTED")}
	secondary := &stubProvider{text: `{"summary":"ok"}`}
	f := NewFallback("feedback", quietLogger(), primary, secondary)

	out, err := f.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Fatalf("out = %q", out)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", primary.calls, secondary.calls)
	}
}

func TestFallback_PermanentErrorIsNotRetried(t *testing.T) {
	primary := &stubProvider{err: errors.New("model produced malformed output")}
	secondary := &stubProvider{text: "unused"}
	f := NewFallback("question", quietLogger(), primary, secondary)

	_, err := f.Generate(context.Background(), "prompt")
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary called on permanent error")
	}
}

func TestFallback_AllExhausted(t *testing.T) {
	f := NewFallback("question", quietLogger(),
		&stubProvider{err: status.Error(codes.ResourceExhausted, "quota")},
		&stubProvider{err: status.Error(codes.PermissionDenied, "key revoked")},
	)

	_, err := f.Generate(context.Background(), "prompt")
	if !errors.Is(err, utils.ErrCredentialsExhausted) {
		t.Fatalf("err = %v, want ErrCredentialsExhausted", err)
	}
	if !utils.IsCode(err, utils.CodeExhausted) {
		t.Fatalf("code = %q, want RESOURCE_EXHAUSTED", utils.CodeOf(err))
	}
}

func TestFallback_NoProviders(t *testing.T) {
	f := NewFallback("question", quietLogger(), nil)
	if f.Len() != 0 {
		t.Fatalf("nil provider was kept")
	}
	if _, err := f.Generate(context.Background(), "p"); !errors.Is(err, utils.ErrCredentialsExhausted) {
		t.Fatalf("err = %v", err)
	}
}

func TestFallback_StreamSwitchesBeforeFirstFragment(t *testing.T) {
	primary := &stubProvider{err: errors.New("API key not valid. Please pass a valid API key.")}
	secondary := &stubProvider{frags: []string{"What is ", "a goroutine?"}}
	f := NewFallback("question", quietLogger(), primary, secondary)

	text, err := drain(f.StreamAnswer(context.Background(), "prompt"))
	if err != nil {
		t.Fatalf("stream err: %v", err)
	}
	if text != "What is a goroutine?" {
		t.Fatalf("text = %q", text)
	}
}

func TestFallback_StreamDoesNotSwitchAfterFragment(t *testing.T) {
	primary := &stubProvider{frags: []string{"What is "}, err: status.Error(codes.ResourceExhausted, "quota")}
	secondary := &stubProvider{frags: []string{"unused"}}
	f := NewFallback("question", quietLogger(), primary, secondary)

	text, err := drain(f.StreamAnswer(context.Background(), "prompt"))
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
	if text != "What is " || secondary.calls != 0 {
		t.Fatalf("text = %q, secondary calls = %d", text, secondary.calls)
	}
}

func TestFallback_CloseClosesAll(t *testing.T) {
	a, b := &stubProvider{}, &stubProvider{}
	if err := NewFallback("x", quietLogger(), a, b).Close(); err != nil {
		t.Fatal(err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("not all providers closed")
	}
}
