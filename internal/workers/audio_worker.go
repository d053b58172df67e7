package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/stt"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
)

const maxAudioBytes = 10 << 20

// AudioWorkerPool recognizes queued candidate audio and publishes the text on
// the interview's STT channel, where the live websocket turns it into an
// answer.
type AudioWorkerPool struct {
	Redis      *redis.Client
	Buffers    services.BufferService
	NumWorkers int

	STT stt.Provider

	Logger *logrus.Logger
	HTTP   *http.Client
	// AudioBucket is the only bucket audio_url may point into. Empty rejects
	// every audio_url.
	AudioBucket string

	Stream         string
	Group          string
	ConsumerPrefix string

	pub publisher
}

func (p *AudioWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Buffers == nil || p.STT == nil {
		return errors.New("AudioWorkerPool missing dependency: Redis/Buffers/STT must be set")
	}
	p.defaults()
	p.pub = p.Redis

	g := &streamGroup{
		rdb:            p.Redis,
		stream:         p.Stream,
		group:          p.Group,
		consumerPrefix: p.ConsumerPrefix,
		n:              p.NumWorkers,
		log:            p.Logger,
		handle:         p.handleMsg,
	}
	g.start(ctx)
	return nil
}

func (p *AudioWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = services.AudioStream
	}
	if p.Group == "" {
		p.Group = "audio-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.HTTP == nil {
		p.HTTP = &http.Client{Timeout: 20 * time.Second}
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "hi", "hi-IN":
		return "hi-IN"
	case "", "en", "en-US":
		return "en-US"
	default:
		return v
	}
}

func (p *AudioWorkerPool) status(ctx context.Context, interviewID string, chunkIndex int64, status, message string) {
	payload, _ := json.Marshal(map[string]any{
		"type":        "status",
		"status":      status,
		"message":     message,
		"chunk_index": chunkIndex,
	})
	_ = p.pub.Publish(ctx, services.StatusChannel(interviewID), string(payload)).Err()
}

func (p *AudioWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	interviewID := field(msg, "interview_id")
	chunkIndex, _ := strconv.ParseInt(field(msg, "chunk_index"), 10, 64)
	if interviewID == "" || chunkIndex <= 0 {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"interview_id": interviewID,
		"chunk_index":  chunkIndex,
	})
	language := normalizeLanguage(field(msg, "language"))

	audio, reason := p.fetchAudio(ctx, msg)
	if reason != "" {
		log.Warn(reason)
		_ = p.Buffers.MarkSTT(ctx, interviewID, chunkIndex, "", 0, models.ChunkFailed, 0)
		p.status(ctx, interviewID, chunkIndex, "failed", reason)
		return
	}

	start := time.Now()
	_ = p.Buffers.MarkSTT(ctx, interviewID, chunkIndex, "", 0, models.ChunkProcessing, 0)
	p.status(ctx, interviewID, chunkIndex, "processing", "stt processing")

	text, conf, err := p.STT.Transcribe(ctx, audio, language)
	procMS := time.Since(start).Milliseconds()
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = p.Buffers.MarkSTT(ctx, interviewID, chunkIndex, "", 0, models.ChunkFailed, procMS)
		p.status(ctx, interviewID, chunkIndex, "failed", "stt failed")
		return
	}

	_ = p.Buffers.MarkSTT(ctx, interviewID, chunkIndex, text, conf, models.ChunkDone, procMS)
	payload, _ := json.Marshal(map[string]any{
		"type":        "stt_result",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
		"is_final":    true,
	})
	_ = p.pub.Publish(ctx, services.STTChannel(interviewID), string(payload)).Err()
	p.status(ctx, interviewID, chunkIndex, "done", "chunk processed")

	log.WithFields(logrus.Fields{"processing_ms": procMS, "chars": len(text)}).Debug("chunk recognized")
}

// fetchAudio returns the chunk bytes, or a non-empty reason when there are
// none.
func (p *AudioWorkerPool) fetchAudio(ctx context.Context, msg redis.XMessage) ([]byte, string) {
	if b64 := field(msg, "audio_base64"); b64 != "" {
		raw := b64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, "invalid audio_base64"
		}
		return decoded, ""
	}

	url := field(msg, "audio_url")
	if url == "" {
		return nil, "audio_base64 or audio_url required"
	}
	if !storage.IsBucketURL(url, p.AudioBucket) {
		return nil, "audio_url not allowed"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "invalid audio_url"
	}
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, "failed to fetch audio_url"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "failed to fetch audio_url"
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if len(body) == 0 {
		return nil, "empty audio"
	}
	return body, ""
}
