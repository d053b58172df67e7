package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/providers/tts"
)

const (
	wsWriteWait = 10 * time.Second
	ttsTimeout  = 15 * time.Second
)

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func (w *wsConn) writeCloseNormal() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "interview ended")
	return w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

type wsSpeakMsg struct {
	Type        string `json:"type"`
	SpeechID    string `json:"speech_id"`
	Text        string `json:"text"`
	Voice       string `json:"voice,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"` // mp3, absent when the client speaks locally
}

type wsMediaMsg struct {
	Type  string `json:"type"`
	Video *bool  `json:"video,omitempty"`
	Audio *bool  `json:"audio,omitempty"`
}

// wsBridge is the browser side of one controller: it plays speech, opens
// capture, drives media and forwards controller events over the socket.
type wsBridge struct {
	conn     *wsConn
	tts      tts.Provider // optional
	language string
	log      *logrus.Entry

	// mu orders speak frames against speech_cancel; a speak frame is written
	// only while its id is still pending.
	mu      sync.Mutex
	pending map[string]func()
	ctx     context.Context
	stop    context.CancelFunc

	endOnce sync.Once
	ended   chan struct{}
}

func newWSBridge(conn *wsConn, synth tts.Provider, language string, log *logrus.Entry) *wsBridge {
	ctx, stop := context.WithCancel(context.Background())
	return &wsBridge{
		conn:     conn,
		tts:      synth,
		language: language,
		log:      log,
		pending:  map[string]func(){},
		ctx:      ctx,
		stop:     stop,
		ended:    make(chan struct{}),
	}
}

func (b *wsBridge) Speak(text, voice string, onDone func()) {
	id := uuid.NewString()
	b.mu.Lock()
	b.pending[id] = onDone
	parent := b.ctx
	b.mu.Unlock()

	go func() {
		msg := wsSpeakMsg{Type: "speak", SpeechID: id, Text: text, Voice: voice}
		if b.tts != nil {
			ctx, cancel := context.WithTimeout(parent, ttsTimeout)
			audio, err := b.tts.Synthesize(ctx, text, voice, b.language)
			cancel()
			switch {
			case parent.Err() != nil:
				return
			case err != nil:
				b.log.WithError(err).Warn("tts failed, client will speak locally")
			default:
				msg.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.pending[id]; !ok {
			return
		}
		if err := b.conn.writeJSON(msg); err != nil {
			b.log.WithError(err).Debug("speak not delivered")
		}
	}()
}

// Cancel drops every pending utterance, aborts synthesis in flight and tells
// the client to stop playback.
func (b *wsBridge) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stop()
	b.ctx, b.stop = context.WithCancel(context.Background())
	b.pending = map[string]func(){}
	_ = b.conn.writeJSON(map[string]string{"type": "speech_cancel"})
}

// playbackDone resolves a pending Speak. Unknown or cancelled ids are ignored.
func (b *wsBridge) playbackDone(id string) {
	b.mu.Lock()
	onDone, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()
	if ok && onDone != nil {
		onDone()
	}
}

func (b *wsBridge) StartCapture() error {
	return b.conn.writeJSON(map[string]string{"type": "capture_start"})
}

func (b *wsBridge) StopCapture() {
	_ = b.conn.writeJSON(map[string]string{"type": "capture_stop"})
}

func (b *wsBridge) SetVideoEnabled(on bool) {
	_ = b.conn.writeJSON(wsMediaMsg{Type: "media", Video: &on})
}

func (b *wsBridge) SetAudioEnabled(on bool) {
	_ = b.conn.writeJSON(wsMediaMsg{Type: "media", Audio: &on})
}

func (b *wsBridge) Release() {
	_ = b.conn.writeJSON(map[string]string{"type": "media_release"})
}

func (b *wsBridge) Notify(ev interview.Event) {
	if err := b.conn.writeJSON(ev); err != nil {
		b.log.WithError(err).Debug("event not delivered")
	}
	if ev.Type == interview.EventEnded {
		b.endOnce.Do(func() { close(b.ended) })
	}
}

// Ended is closed after the controller's ended event was written.
func (b *wsBridge) Ended() <-chan struct{} { return b.ended }
