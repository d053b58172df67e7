// Package interview drives one live mock interview: the turn-taking state
// machine, its transcript and its countdown.
package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

const finalizeTimeout = 30 * time.Second

type Deps struct {
	Questions  QuestionGenerator
	Speaker    Speaker
	Recognizer Recognizer  // nil means text input only
	Device     MediaDevice // nil means audio/video off
	Store      Store
	Observer   Observer
	Logger     *logrus.Logger
}

type Options struct {
	Voice            string
	CountdownSeconds int64
	// TickInterval drives the lifecycle ticker. Zero means one second; a
	// negative value disables the ticker so callers drive Tick themselves.
	TickInterval time.Duration
	Now          func() time.Time
}

// Controller is the turn-taking state machine of one interview. All state
// changes happen under mu; side effects on speech and media run after mu is
// released.
type Controller struct {
	mu         sync.Mutex
	iv         models.Interview
	state      State
	turn       uint64
	cancelTurn context.CancelFunc
	textOnly   bool
	videoOn    bool
	micOn      bool
	ended      bool
	finalized  bool
	baseCtx    context.Context

	finMu sync.Mutex // serializes Store.Finalize attempts

	transcript *Transcript
	lifecycle  *Lifecycle
	deps       Deps
	opts       Options
	log        *logrus.Entry

	emitMu sync.Mutex
	sealed bool

	done chan struct{}
}

// batch collects events and side effects produced while holding mu.
type batch struct {
	events  []Event
	effects []func()
}

func (b *batch) event(ev Event)   { b.events = append(b.events, ev) }
func (b *batch) effect(fn func()) { b.effects = append(b.effects, fn) }

func NewController(iv models.Interview, deps Deps, opts Options) (*Controller, error) {
	const op = "interview.NewController"

	if deps.Questions == nil || deps.Speaker == nil || deps.Store == nil {
		return nil, utils.E(utils.CodeInternal, op, "questions, speaker and store are required", nil)
	}
	if iv.InterviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if iv.Status == "" {
		iv.Status = models.StatusPending
	}

	c := &Controller{
		iv:         iv,
		state:      StateIdle,
		transcript: NewTranscript(),
		deps:       deps,
		opts:       opts,
		baseCtx:    context.Background(),
		done:       make(chan struct{}),
		log: deps.Logger.WithFields(logrus.Fields{
			"interview_id": iv.InterviewID,
			"user_id":      iv.UserID,
		}),
	}
	c.transcript.now = opts.Now
	c.lifecycle = NewLifecycle(opts.CountdownSeconds, c.onTick, c.onExpire)
	return c, nil
}

// Start activates the interview, speaks the intro and starts the countdown.
func (c *Controller) Start(ctx context.Context) error {
	const op = "Controller.Start"

	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "interview has ended", ErrSessionEnded)
	}
	if c.state != StateIdle || !c.iv.Status.CanTransitionTo(models.StatusActive) {
		c.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "interview already started", ErrAlreadyStarted)
	}

	now := c.opts.Now()
	remaining := c.lifecycle.Remaining()
	next := c.iv
	next.Status = models.StatusActive
	next.StartedAt = &now
	next.RemainingSeconds = &remaining

	if err := c.deps.Store.Activate(ctx, next); err != nil {
		c.mu.Unlock()
		return utils.E(utils.CodeUnavailable, op, "failed to activate interview", err)
	}
	c.iv = next
	c.baseCtx = context.WithoutCancel(ctx)

	var b batch
	if c.deps.Device == nil {
		b.event(Event{Type: EventDegraded, Mode: ModeMediaOff, Message: "camera and microphone unavailable"})
	} else {
		c.videoOn, c.micOn = true, true
	}
	if c.deps.Recognizer == nil {
		c.textOnly = true
		b.event(Event{Type: EventDegraded, Mode: ModeTextOnly, Message: "speech recognition unavailable, type your answers"})
	}

	intro := IntroPrompt(c.iv.Language, c.iv.Role)
	u, _ := c.transcript.Append(models.SpeakerAssistant, intro, models.SourceIntro)
	c.state = StateAwaitingInput
	b.event(Event{Type: EventUtterance, Utterance: &u})
	b.event(Event{Type: EventState, State: c.state})
	b.effect(c.speakEffect(c.turn, intro))

	c.lifecycle.Begin()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"role": c.iv.Role, "language": c.iv.Language}).Info("interview started")
	c.flush(b)

	if c.opts.TickInterval >= 0 {
		go c.lifecycle.Run(c.baseCtx, c.opts.TickInterval)
	}
	return nil
}

// SubmitAnswer records a finalized candidate answer and requests the next
// question. Blank input is ignored. Input arriving while a question is being
// generated is rejected with ErrTurnInFlight and leaves the transcript as is.
func (c *Controller) SubmitAnswer(ctx context.Context, text string, source models.InputSource) error {
	const op = "Controller.SubmitAnswer"

	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return utils.E(utils.CodePrecondition, op, "interview has not started", ErrNotStarted)
	case StateEnded:
		c.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "interview has ended", ErrSessionEnded)
	case StateGenerating:
		c.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "wait for the next question", ErrTurnInFlight)
	}

	u, err := c.transcript.Append(models.SpeakerCandidate, text, source)
	if err != nil {
		c.mu.Unlock()
		return nil
	}

	c.turn++
	turn := c.turn
	c.state = StateGenerating

	genCtx, cancel := context.WithCancel(c.baseCtx)
	c.cancelTurn = cancel

	req := QuestionRequest{
		Conversation:    c.transcript.Flatten(),
		Role:            c.iv.Role,
		RoleDescription: c.iv.RoleDescription,
		Language:        c.iv.Language,
		TechStacks:      append([]string(nil), c.iv.TechStacks...),
	}

	var b batch
	b.event(Event{Type: EventUtterance, Utterance: &u})
	b.event(Event{Type: EventState, State: c.state})
	if rec := c.deps.Recognizer; rec != nil && !c.textOnly {
		b.effect(rec.StopCapture)
	}
	c.mu.Unlock()

	c.flush(b)
	go c.generate(genCtx, turn, req)
	return nil
}

func (c *Controller) generate(ctx context.Context, turn uint64, req QuestionRequest) {
	chunks, errs := c.deps.Questions.StreamQuestion(ctx, req)

	var sb strings.Builder
	for frag := range chunks {
		sb.WriteString(frag)
		if c.isCurrent(turn) {
			c.emit(Event{Type: EventFragment, Fragment: frag})
		}
	}

	var err error
	if errs != nil {
		err = <-errs
	}
	c.completeTurn(turn, sb.String(), err)
}

func (c *Controller) isCurrent(turn uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.ended && c.turn == turn && c.state == StateGenerating
}

func (c *Controller) completeTurn(turn uint64, text string, err error) {
	c.mu.Lock()
	if c.ended || c.turn != turn || c.state != StateGenerating {
		c.mu.Unlock()
		return
	}
	if c.cancelTurn != nil {
		c.cancelTurn()
		c.cancelTurn = nil
	}

	var b batch
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if err == nil {
			err = ErrEmptyQuestion
		}
		c.state = StateAwaitingInput
		b.event(Event{
			Type:    EventError,
			Code:    utils.CodeOf(err),
			Message: "could not get the next question, please answer again",
		})
		b.event(Event{Type: EventState, State: c.state})
		c.openCaptureLocked(&b)
		c.mu.Unlock()

		c.log.WithError(err).Warn("question generation failed")
		c.flush(b)
		return
	}

	u, _ := c.transcript.Append(models.SpeakerAssistant, text, models.SourceGenerated)
	c.state = StateAwaitingInput
	b.event(Event{Type: EventUtterance, Utterance: &u})
	b.event(Event{Type: EventState, State: c.state})
	b.effect(c.speakEffect(turn, text))
	c.mu.Unlock()

	c.flush(b)
}

func (c *Controller) speakEffect(turn uint64, text string) func() {
	return func() {
		c.deps.Speaker.Speak(text, c.opts.Voice, func() { c.playbackDone(turn) })
	}
}

// playbackDone re-opens capture once the question for turn finished playing.
func (c *Controller) playbackDone(turn uint64) {
	c.mu.Lock()
	if c.ended || c.turn != turn || c.state != StateAwaitingInput {
		c.mu.Unlock()
		return
	}
	var b batch
	c.openCaptureLocked(&b)
	c.mu.Unlock()
	c.flush(b)
}

func (c *Controller) openCaptureLocked(b *batch) {
	rec := c.deps.Recognizer
	if rec == nil || c.textOnly {
		return
	}
	b.effect(func() {
		if err := rec.StartCapture(); err != nil {
			c.degradeToText(err)
		}
	})
}

func (c *Controller) degradeToText(cause error) {
	c.mu.Lock()
	if c.ended || c.textOnly {
		c.mu.Unlock()
		return
	}
	c.textOnly = true
	c.mu.Unlock()

	c.log.WithError(cause).Warn("speech capture unavailable, switching to text input")
	c.emit(Event{Type: EventDegraded, Mode: ModeTextOnly, Message: "speech recognition unavailable, type your answers"})
}

// End terminates the interview. Only the first call emits events and
// releases speech and media; later calls return the same final snapshot and
// retry persisting it if the earlier attempt failed.
func (c *Controller) End(ctx context.Context, reason models.EndReason) (models.Interview, error) {
	const op = "Controller.End"

	c.mu.Lock()
	if c.ended {
		iv := c.iv
		done := c.finalized
		utterances := c.transcript.Utterances()
		c.mu.Unlock()
		if done {
			return iv, nil
		}
		if err := c.finalize(ctx, iv, utterances); err != nil {
			c.log.WithError(err).Error("interview finalize retry failed")
			return iv, utils.E(utils.CodeUnavailable, op, "failed to persist interview", err)
		}
		c.log.Info("interview finalized on retry")
		return iv, nil
	}
	c.ended = true
	c.state = StateEnded
	c.turn++
	if c.cancelTurn != nil {
		c.cancelTurn()
		c.cancelTurn = nil
	}
	c.lifecycle.Stop()

	now := c.opts.Now()
	if c.iv.Status.CanTransitionTo(models.StatusCompleted) {
		c.iv.Status = models.StatusCompleted
	}
	c.iv.EndedAt = &now
	c.iv.EndReason = reason
	c.iv.DurationSeconds = c.lifecycle.Elapsed()
	c.iv.RemainingSeconds = nil
	c.iv.Transcript = c.transcript.Flatten()
	iv := c.iv
	utterances := c.transcript.Utterances()
	c.mu.Unlock()

	c.deps.Speaker.Cancel()
	if c.deps.Recognizer != nil {
		c.deps.Recognizer.StopCapture()
	}
	if c.deps.Device != nil {
		c.deps.Device.Release()
	}

	ferr := c.finalize(ctx, iv, utterances)

	log := c.log.WithFields(logrus.Fields{
		"reason":     reason,
		"duration_s": iv.DurationSeconds,
		"utterances": len(utterances),
	})
	if ferr != nil {
		log.WithError(ferr).Error("interview finalize failed")
	} else {
		log.Info("interview ended")
	}

	c.emit(
		Event{Type: EventState, State: StateEnded},
		Event{Type: EventEnded, Interview: &iv},
	)
	close(c.done)

	if ferr != nil {
		return iv, utils.E(utils.CodeUnavailable, op, "failed to persist interview", ferr)
	}
	return iv, nil
}

func (c *Controller) finalize(ctx context.Context, iv models.Interview, utterances []models.Utterance) error {
	c.finMu.Lock()
	defer c.finMu.Unlock()

	c.mu.Lock()
	done := c.finalized
	c.mu.Unlock()
	if done {
		return nil
	}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := c.deps.Store.Finalize(fctx, iv, utterances); err != nil {
		return err
	}
	c.mu.Lock()
	c.finalized = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) onTick(elapsed, remaining int64) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.iv.DurationSeconds = elapsed
	r := remaining
	c.iv.RemainingSeconds = &r
	c.mu.Unlock()

	c.emit(Event{Type: EventTick, Elapsed: &elapsed, Remaining: &remaining})
}

func (c *Controller) onExpire() {
	c.mu.Lock()
	ctx := c.baseCtx
	c.mu.Unlock()
	if _, err := c.End(ctx, models.EndReasonTimeout); err != nil {
		c.log.WithError(err).Warn("end on timeout")
	}
}

// ToggleCamera flips the video track and returns its new state.
func (c *Controller) ToggleCamera() (bool, error) {
	return c.toggle("Controller.ToggleCamera", &c.videoOn, func(d MediaDevice, on bool) { d.SetVideoEnabled(on) })
}

// ToggleMic flips the audio track and returns its new state.
func (c *Controller) ToggleMic() (bool, error) {
	return c.toggle("Controller.ToggleMic", &c.micOn, func(d MediaDevice, on bool) { d.SetAudioEnabled(on) })
}

func (c *Controller) toggle(op string, flag *bool, apply func(MediaDevice, bool)) (bool, error) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return false, utils.E(utils.CodeConflict, op, "interview has ended", ErrSessionEnded)
	}
	d := c.deps.Device
	if d == nil {
		c.mu.Unlock()
		return false, utils.E(utils.CodePrecondition, op, "no media device", ErrNoMediaDevice)
	}
	*flag = !*flag
	on := *flag
	c.mu.Unlock()

	apply(d, on)
	return on, nil
}

func (c *Controller) flush(b batch) {
	c.emit(b.events...)
	if len(b.effects) > 0 && c.Ended() {
		return
	}
	for _, fn := range b.effects {
		fn()
	}
}

// emit forwards events to the observer. Nothing is delivered after the ended
// event.
func (c *Controller) emit(evs ...Event) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	for _, ev := range evs {
		if c.sealed {
			return
		}
		ev.InterviewID = c.iv.InterviewID
		c.deps.Observer.Notify(ev)
		if ev.Type == EventEnded {
			c.sealed = true
		}
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

func (c *Controller) TextOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textOnly
}

// Snapshot returns a copy of the interview as the controller currently sees it.
func (c *Controller) Snapshot() models.Interview {
	c.mu.Lock()
	defer c.mu.Unlock()
	iv := c.iv
	if !c.ended {
		iv.Transcript = c.transcript.Flatten()
	}
	return iv
}

func (c *Controller) Transcript() *Transcript { return c.transcript }

func (c *Controller) Utterances() []models.Utterance { return c.transcript.Utterances() }

// QuestionsAsked counts generated questions, excluding the intro.
func (c *Controller) QuestionsAsked() int {
	n := 0
	for _, u := range c.transcript.Utterances() {
		if u.Source == models.SourceGenerated {
			n++
		}
	}
	return n
}

func (c *Controller) Lifecycle() *Lifecycle { return c.lifecycle }

// Done is closed once End has finished.
func (c *Controller) Done() <-chan struct{} { return c.done }

// IsRejected reports whether err is an input rejection the client can retry.
func IsRejected(err error) bool {
	return errors.Is(err, ErrTurnInFlight) || errors.Is(err, ErrNotStarted)
}
