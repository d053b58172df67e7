package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/utils"
)

// Fallback tries an ordered list of providers, one per credential. It moves
// to the next provider only on credential-class errors; any other failure is
// returned straight away.
type Fallback struct {
	providers []Provider
	log       *logrus.Logger
	name      string
}

func NewFallback(name string, log *logrus.Logger, providers ...Provider) *Fallback {
	if log == nil {
		log = logrus.New()
	}
	ps := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Fallback{providers: ps, log: log, name: name}
}

func (f *Fallback) Len() int { return len(f.providers) }

func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "llm.Fallback.Generate"

	var last error
	for i, p := range f.providers {
		out, err := p.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", utils.E(utils.CodeTimeout, op, "generation cancelled", ctx.Err())
		}
		if !IsCredentialError(err) {
			return "", utils.E(utils.CodeUnavailable, op, "generation failed", err)
		}
		f.rejected(i, err)
		last = err
	}
	return "", f.exhausted(op, last)
}

func (f *Fallback) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	const op = "llm.Fallback.StreamAnswer"

	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(out)

		var last error
		for i, p := range f.providers {
			chunks, perrs := p.StreamAnswer(ctx, prompt)

			delivered := false
			for c := range chunks {
				delivered = true
				select {
				case out <- c:
				case <-ctx.Done():
				}
			}

			var err error
			if perrs != nil {
				err = <-perrs
			}
			if err == nil {
				return
			}
			if ctx.Err() != nil {
				errs <- utils.E(utils.CodeTimeout, op, "generation cancelled", ctx.Err())
				return
			}
			// Part of the answer already reached the caller; switching
			// credentials now would splice two different answers.
			if delivered || !IsCredentialError(err) {
				errs <- utils.E(utils.CodeUnavailable, op, "generation failed", err)
				return
			}
			f.rejected(i, err)
			last = err
		}
		errs <- f.exhausted(op, last)
	}()

	return out, errs
}

func (f *Fallback) Close() error {
	var first error
	for _, p := range f.providers {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *Fallback) rejected(i int, err error) {
	f.log.WithFields(logrus.Fields{
		"backend":    f.name,
		"credential": i + 1,
		"of":         len(f.providers),
	}).WithError(err).Warn("credential rejected, trying next")
}

func (f *Fallback) exhausted(op string, last error) error {
	f.log.WithField("backend", f.name).WithError(last).Error("all credentials exhausted")
	err := utils.ErrCredentialsExhausted
	if last != nil {
		err = fmt.Errorf("%w: %v", utils.ErrCredentialsExhausted, last)
	}
	return utils.E(utils.CodeExhausted, op, "all credentials exhausted", err)
}
