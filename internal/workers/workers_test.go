package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type published struct {
	channel string
	payload map[string]any
}

type fakePublisher struct {
	mu  sync.Mutex
	out []published
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	var m map[string]any
	_ = json.Unmarshal([]byte(message.(string)), &m)
	f.mu.Lock()
	f.out = append(f.out, published{channel: channel, payload: m})
	f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func (f *fakePublisher) on(channel string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, p := range f.out {
		if p.channel == channel {
			out = append(out, p.payload)
		}
	}
	return out
}

type fakeBuffers struct {
	services.BufferService
	marks []models.ChunkStatus
	text  string
}

func (f *fakeBuffers) MarkSTT(_ context.Context, _ string, _ int64, rawText string, _ float64, status models.ChunkStatus, _ int64) error {
	f.marks = append(f.marks, status)
	if status == models.ChunkDone {
		f.text = rawText
	}
	return nil
}

type fakeSTT struct {
	text     string
	err      error
	language string
}

func (f *fakeSTT) Transcribe(_ context.Context, audio []byte, language string) (string, float64, error) {
	f.language = language
	if f.err != nil {
		return "", 0, f.err
	}
	return f.text + ":" + string(audio), 0.9, nil
}

func (f *fakeSTT) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestAudioWorkerHandleMsg(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte("pcm"))

	tests := []struct {
		name       string
		values     map[string]any
		sttErr     error
		wantMarks  []models.ChunkStatus
		wantResult bool
		wantLang   string
	}{
		{
			name:       "recognized",
			values:     map[string]any{"interview_id": "iv", "chunk_index": "1", "language": "hi-IN", "audio_base64": "data:audio/webm;base64," + audio},
			wantMarks:  []models.ChunkStatus{models.ChunkProcessing, models.ChunkDone},
			wantResult: true,
			wantLang:   "hi-IN",
		},
		{
			name:      "bad base64",
			values:    map[string]any{"interview_id": "iv", "chunk_index": "2", "audio_base64": "%%%"},
			wantMarks: []models.ChunkStatus{models.ChunkFailed},
		},
		{
			name:      "stt failure",
			values:    map[string]any{"interview_id": "iv", "chunk_index": "3", "audio_base64": audio},
			sttErr:    errors.New("backend down"),
			wantMarks: []models.ChunkStatus{models.ChunkProcessing, models.ChunkFailed},
		},
		{
			name:   "missing interview id",
			values: map[string]any{"chunk_index": "4", "audio_base64": audio},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			buffers := &fakeBuffers{}
			recognizer := &fakeSTT{text: "hello", err: tt.sttErr}
			p := &AudioWorkerPool{Buffers: buffers, STT: recognizer, Logger: quietLogger(), pub: pub}
			p.defaults()

			p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: tt.values})

			if len(buffers.marks) != len(tt.wantMarks) {
				t.Fatalf("marks = %v, want %v", buffers.marks, tt.wantMarks)
			}
			for i := range tt.wantMarks {
				if buffers.marks[i] != tt.wantMarks[i] {
					t.Fatalf("marks = %v, want %v", buffers.marks, tt.wantMarks)
				}
			}

			results := pub.on(services.STTChannel("iv"))
			if tt.wantResult {
				if len(results) != 1 || results[0]["text"] != "hello:pcm" || results[0]["is_final"] != true {
					t.Fatalf("stt results = %v", results)
				}
				if recognizer.language != tt.wantLang {
					t.Fatalf("language = %q, want %q", recognizer.language, tt.wantLang)
				}
			} else if len(results) != 0 {
				t.Fatalf("unexpected stt results %v", results)
			}
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	for in, want := range map[string]string{"": "en-US", "en": "en-US", "hi": "hi-IN", "hi-IN": "hi-IN", "fr-FR": "fr-FR"} {
		if got := normalizeLanguage(in); got != want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeFeedbackService struct {
	services.FeedbackService
	err error
	ids []string
}

func (f *fakeFeedbackService) Process(_ context.Context, id string) (*models.FeedbackReport, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return &models.FeedbackReport{OverallRating: 4}, nil
}

func TestFeedbackWorkerHandleMsg(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
		wantCode   string
	}{
		{name: "ready", wantStatus: "ready"},
		{name: "failed", err: utils.E(utils.CodePrecondition, "op", "empty", utils.ErrEmptyTranscript), wantStatus: "failed", wantCode: string(utils.CodePrecondition)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			fb := &fakeFeedbackService{err: tt.err}
			p := &FeedbackWorkerPool{Feedback: fb, Logger: quietLogger(), pub: pub}
			p.defaults()

			p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{"interview_id": "iv"}})

			if len(fb.ids) != 1 || fb.ids[0] != "iv" {
				t.Fatalf("processed = %v", fb.ids)
			}
			msgs := pub.on(services.StatusChannel("iv"))
			if len(msgs) != 1 || msgs[0]["feedback_status"] != tt.wantStatus {
				t.Fatalf("status messages = %v", msgs)
			}
			if tt.wantCode != "" && msgs[0]["code"] != tt.wantCode {
				t.Fatalf("code = %v, want %s", msgs[0]["code"], tt.wantCode)
			}
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestAudioWorkerAudioURLAllowList(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantFetch bool
		wantMarks []models.ChunkStatus
	}{
		{
			name:      "bucket object",
			url:       "https://storage.googleapis.com/iv-audio/iv/5.webm",
			wantFetch: true,
			wantMarks: []models.ChunkStatus{models.ChunkProcessing, models.ChunkDone},
		},
		{
			name:      "metadata server",
			url:       "http://169.254.169.254/computeMetadata/v1/instance",
			wantMarks: []models.ChunkStatus{models.ChunkFailed},
		},
		{
			name:      "foreign host",
			url:       "https://example.com/iv-audio/iv/5.webm",
			wantMarks: []models.ChunkStatus{models.ChunkFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fetched []string
			client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				fetched = append(fetched, r.URL.String())
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("pcm")), Header: http.Header{}}, nil
			})}
			buffers := &fakeBuffers{}
			p := &AudioWorkerPool{
				Buffers:     buffers,
				STT:         &fakeSTT{text: "hello"},
				Logger:      quietLogger(),
				HTTP:        client,
				AudioBucket: "iv-audio",
				pub:         &fakePublisher{},
			}
			p.defaults()

			p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{
				"interview_id": "iv", "chunk_index": "5", "audio_url": tt.url,
			}})

			if (len(fetched) == 1) != tt.wantFetch || len(fetched) > 1 {
				t.Fatalf("fetched = %v, wantFetch %v", fetched, tt.wantFetch)
			}
			if len(buffers.marks) != len(tt.wantMarks) {
				t.Fatalf("marks = %v, want %v", buffers.marks, tt.wantMarks)
			}
			for i := range tt.wantMarks {
				if buffers.marks[i] != tt.wantMarks[i] {
					t.Fatalf("marks = %v, want %v", buffers.marks, tt.wantMarks)
				}
			}
		})
	}
}
