package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/tts"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
	"github.com/yoockh/yoointerview/internal/utils"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 25 * time.Second
)

type WSConfig struct {
	CountdownSeconds int64
	// ServerSTT means audio chunks are recognized by the audio worker, so
	// clients without local speech recognition still get voice input.
	ServerSTT bool
	// AllowedOrigins empty accepts any origin.
	AllowedOrigins []string
	// AudioBucket is the bucket audio_url chunks must live in.
	AudioBucket string
}

type WSDeps struct {
	Interviews services.InterviewService
	Buffers    services.BufferService
	Questions  interview.QuestionGenerator
	TTS        tts.Provider  // optional
	Redis      *redis.Client // optional, required for audio chunks and server STT
	Live       *interview.Registry
	Logger     *logrus.Logger
}

type WSHandler struct {
	WSDeps
	cfg      WSConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(d WSDeps, cfg WSConfig) *WSHandler {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.Live == nil {
		d.Live = interview.NewRegistry()
	}
	return &WSHandler{
		WSDeps: d,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := map[string]struct{}{}
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

type wsClientMsg struct {
	Type string `json:"type"`

	// hello
	SpeechSupported bool   `json:"speech_supported"`
	MediaSupported  *bool  `json:"media_supported"`
	Voice           string `json:"voice"`

	// answer_text, speech_final
	Text string `json:"text"`

	// audio_chunk
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`

	// playback_done
	SpeechID string `json:"speech_id"`
}

// sttResult is published by the audio worker on services.STTChannel.
type sttResult struct {
	Type       string  `json:"type"`
	ChunkIndex int64   `json:"chunk_index"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"is_final"`
}

type wsSession struct {
	h      *WSHandler
	iv     models.Interview
	conn   *wsConn
	bridge *wsBridge
	log    *logrus.Entry
	ctrl   atomic.Pointer[interview.Controller]
}

func (s *wsSession) writeError(code utils.Code, msg string) {
	_ = s.conn.writeJSON(interview.Event{
		Type:        interview.EventError,
		InterviewID: s.iv.InterviewID,
		Code:        code,
		Message:     msg,
	})
}

func (s *wsSession) writeErr(err error) {
	msg := "internal error"
	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	s.writeError(utils.CodeOf(err), msg)
}

// InterviewWS runs one live interview over a websocket. The connection owns
// the controller: closing it ends the interview.
func (h *WSHandler) InterviewWS(c *gin.Context) {
	const op = "WSHandler.InterviewWS"

	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	iv, err := h.Interviews.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if iv.Status != models.StatusPending {
		writeError(c, utils.E(utils.CodePrecondition, op, "interview already "+string(iv.Status), nil))
		return
	}
	if cur, ok := h.Live.Get(iv.InterviewID); ok && !cur.Ended() {
		writeError(c, utils.E(utils.CodeConflict, op, "interview is already live", interview.ErrAlreadyLive))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	log := h.Logger.WithFields(logrus.Fields{
		"interview_id": iv.InterviewID,
		"user_id":      iv.UserID,
	})
	wc := &wsConn{c: conn}
	s := &wsSession{
		h:      h,
		iv:     *iv,
		conn:   wc,
		bridge: newWSBridge(wc, h.TTS, iv.Language.Locale(), log),
		log:    log,
	}
	defer s.close()

	var msgs <-chan *redis.Message
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(ctx, services.STTChannel(iv.InterviewID), services.StatusChannel(iv.InterviewID))
		defer pubsub.Close()
		msgs = pubsub.Channel()
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readLoop(ctx)
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-s.bridge.Ended():
			_ = wc.writeCloseNormal()
			return
		case <-ping.C:
			if err := wc.ping(); err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			s.forward(ctx, m)
		}
	}
}

func (s *wsSession) readLoop(ctx context.Context) {
	conn := s.conn.c
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	hello := wsClientMsg{Type: "hello"}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.writeError(utils.CodeInvalidArgument, "invalid json")
			continue
		}

		ctrl := s.ctrl.Load()
		switch msg.Type {
		case "hello":
			if ctrl != nil {
				s.writeError(utils.CodeConflict, "interview already started")
				continue
			}
			hello = msg

		case "start":
			if ctrl != nil {
				s.writeError(utils.CodeConflict, "interview already started")
				continue
			}
			if err := s.start(ctx, hello); err != nil {
				s.writeErr(err)
			}

		case "answer_text", "speech_final":
			if ctrl == nil {
				s.writeError(utils.CodePrecondition, "interview has not started")
				continue
			}
			source := models.SourceText
			if msg.Type == "speech_final" {
				source = models.SourceSpeech
			}
			if err := ctrl.SubmitAnswer(ctx, msg.Text, source); err != nil {
				s.writeErr(err)
			}

		case "audio_chunk":
			s.queueAudio(ctx, msg)

		case "playback_done":
			s.bridge.playbackDone(msg.SpeechID)

		case "toggle_camera", "toggle_mic":
			if ctrl == nil {
				s.writeError(utils.CodePrecondition, "interview has not started")
				continue
			}
			toggle := ctrl.ToggleCamera
			if msg.Type == "toggle_mic" {
				toggle = ctrl.ToggleMic
			}
			if _, err := toggle(); err != nil {
				s.writeErr(err)
			}

		case "end":
			if ctrl == nil {
				if _, err := s.h.Interviews.Abandon(ctx, models.Capabilities{UserID: s.iv.UserID}, s.iv.InterviewID); err != nil {
					s.writeErr(err)
				}
				_ = s.conn.writeJSON(interview.Event{Type: interview.EventEnded, InterviewID: s.iv.InterviewID})
				return
			}
			if _, err := ctrl.End(ctx, models.EndReasonUser); err != nil {
				s.writeErr(err)
			}

		default:
			s.writeError(utils.CodeInvalidArgument, "unknown message type")
		}
	}
}

func (s *wsSession) start(ctx context.Context, hello wsClientMsg) error {
	deps := interview.Deps{
		Questions: s.h.Questions,
		Speaker:   s.bridge,
		Store:     s.h.Interviews,
		Observer:  s.bridge,
		Logger:    s.h.Logger,
	}
	if hello.SpeechSupported || (s.h.ServerSTTReady() && s.h.cfg.ServerSTT) {
		deps.Recognizer = s.bridge
	}
	if hello.MediaSupported == nil || *hello.MediaSupported {
		deps.Device = s.bridge
	}

	ctrl, err := interview.NewController(s.iv, deps, interview.Options{
		Voice:            hello.Voice,
		CountdownSeconds: s.h.cfg.CountdownSeconds,
	})
	if err != nil {
		return err
	}
	if err := s.h.Live.Register(s.iv.InterviewID, ctrl); err != nil {
		return utils.E(utils.CodeConflict, "WSHandler.start", "interview is already live", err)
	}
	if err := ctrl.Start(ctx); err != nil {
		s.h.Live.Remove(s.iv.InterviewID, ctrl)
		return err
	}
	s.ctrl.Store(ctrl)
	return nil
}

// ServerSTTReady reports whether audio chunks can reach the audio worker.
func (h *WSHandler) ServerSTTReady() bool {
	return h.Redis != nil && h.Buffers != nil
}

func (s *wsSession) queueAudio(ctx context.Context, msg wsClientMsg) {
	if !s.h.ServerSTTReady() {
		s.writeError(utils.CodeUnavailable, "server speech recognition is not available")
		return
	}
	if msg.ChunkIndex <= 0 {
		s.writeError(utils.CodeInvalidArgument, "chunk_index must be > 0")
		return
	}

	var audioBase64, audioURL *string
	if msg.AudioBase64 != "" {
		audioBase64 = &msg.AudioBase64
	}
	if msg.AudioURL != "" {
		if !storage.IsBucketURL(msg.AudioURL, s.h.cfg.AudioBucket) {
			s.writeError(utils.CodeInvalidArgument, "audio_url must point into the audio bucket")
			return
		}
		audioURL = &msg.AudioURL
	}
	if audioBase64 == nil && audioURL == nil {
		s.writeError(utils.CodeInvalidArgument, "audio_base64 or audio_url required")
		return
	}

	if _, err := s.h.Buffers.InsertAudioChunk(ctx, s.iv.InterviewID, msg.ChunkIndex, audioURL, audioBase64); err != nil {
		s.writeErr(err)
		return
	}

	fields := map[string]any{
		"interview_id": s.iv.InterviewID,
		"chunk_index":  strconv.FormatInt(msg.ChunkIndex, 10),
		"language":     s.iv.Language.Locale(),
		"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
	}
	if audioBase64 != nil {
		fields["audio_base64"] = *audioBase64
	}
	if audioURL != nil {
		fields["audio_url"] = *audioURL
	}
	if err := s.h.Redis.XAdd(ctx, &redis.XAddArgs{Stream: services.AudioStream, Values: fields}).Err(); err != nil {
		s.log.WithError(err).Warn("audio chunk not queued")
		s.writeError(utils.CodeUnavailable, "failed to enqueue audio")
	}
}

// forward relays worker output. Final recognition results become answers;
// everything else goes to the client as is.
func (s *wsSession) forward(ctx context.Context, m *redis.Message) {
	if m.Channel != services.STTChannel(s.iv.InterviewID) {
		_ = s.conn.writeText([]byte(m.Payload))
		return
	}

	var res sttResult
	if err := json.Unmarshal([]byte(m.Payload), &res); err != nil {
		s.log.WithError(err).Warn("bad stt payload")
		return
	}
	_ = s.conn.writeText([]byte(m.Payload))
	if !res.IsFinal {
		return
	}
	ctrl := s.ctrl.Load()
	if ctrl == nil {
		return
	}
	if err := ctrl.SubmitAnswer(ctx, res.Text, models.SourceSpeech); err != nil {
		s.writeErr(err)
	}
}

func (s *wsSession) close() {
	ctrl := s.ctrl.Load()
	if ctrl == nil {
		return
	}
	if _, err := ctrl.End(context.Background(), models.EndReasonDisconnect); err != nil {
		s.log.WithError(err).Warn("end on disconnect")
	}
	s.h.Live.Remove(s.iv.InterviewID, ctrl)
}
