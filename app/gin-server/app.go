package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/config"
	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/api/routes"
	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/feedback"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/providers/llm"
	"github.com/yoockh/yoointerview/internal/providers/stt"
	"github.com/yoockh/yoointerview/internal/providers/tts"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
)

// app holds the wired object graph shared by the subcommands.
type app struct {
	cfg *config.Config
	log *logrus.Logger

	questionLLM llm.Provider
	feedbackLLM llm.Provider
	stt         stt.Provider // nil unless STT_ENABLED
	tts         tts.Provider // nil unless TTS_ENABLED
	gcs         *storage.GCSStore

	accounts    services.AccountService
	templates   services.TemplateService
	interviews  services.InterviewService
	transcripts services.TranscriptService
	archive     services.ArchiveService
	buffers     services.BufferService
	feedback    services.FeedbackService
	questions   interview.QuestionGenerator
	live        *interview.Registry

	closers []func() error
}

func bootstrap(ctx context.Context, log *logrus.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, live: interview.NewRegistry()}

	if err := config.InitMongo(); err != nil {
		return nil, fmt.Errorf("mongo init: %w", err)
	}
	a.closers = append(a.closers, func() error { return config.CloseMongo(context.Background()) })
	log.Info("MongoDB connected")

	if err := config.InitPostgres(cfg.Debug); err != nil {
		a.Close()
		return nil, fmt.Errorf("postgres init: %w", err)
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		a.Close()
		return nil, fmt.Errorf("redis init: %w", err)
	}
	a.closers = append(a.closers, config.RedisClient.Close)
	log.Info("Redis connected")

	if err := a.initProviders(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.wireServices()
	return a, nil
}

func (a *app) initProviders(ctx context.Context) error {
	cfg := a.cfg

	switch cfg.LLMBackend {
	case config.BackendVertex:
		v, err := llm.NewVertexGemini(ctx, cfg.GCPProject, cfg.GCPLocation, cfg.LLMModel)
		if err != nil {
			return fmt.Errorf("vertex init: %w", err)
		}
		a.closers = append(a.closers, v.Close)
		a.questionLLM, a.feedbackLLM = v, v
	default:
		q, err := a.geminiFallback(ctx, "question", cfg.QuestionKeys)
		if err != nil {
			return err
		}
		f, err := a.geminiFallback(ctx, "feedback", cfg.FeedbackKeys)
		if err != nil {
			return err
		}
		a.questionLLM, a.feedbackLLM = q, f
	}

	if cfg.STTEnabled {
		s, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			return fmt.Errorf("speech init: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.stt = s
	}
	if cfg.TTSEnabled {
		t, err := tts.NewGoogleTTS(ctx)
		if err != nil {
			return fmt.Errorf("tts init: %w", err)
		}
		a.closers = append(a.closers, t.Close)
		a.tts = t
	}
	if cfg.GCSBucket != "" {
		g, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return fmt.Errorf("gcs init: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		a.gcs = g
	}
	return nil
}

// geminiFallback builds one API-key client per credential, tried in order.
func (a *app) geminiFallback(ctx context.Context, role string, keys config.LLMKeys) (*llm.Fallback, error) {
	var providers []llm.Provider
	for i, key := range keys.List() {
		p, err := llm.NewGeminiAPI(ctx, key, a.cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("gemini %s client %d: %w", role, i+1, err)
		}
		providers = append(providers, p)
	}
	fb := llm.NewFallback(role, a.log, providers...)
	a.closers = append(a.closers, fb.Close)
	return fb, nil
}

func (a *app) wireServices() {
	pg := config.PostgresDB
	mdb := config.MongoDatabase(a.cfg.MongoDB)
	interviewRepo := mongorepo.NewInterviewRepo(mdb)

	a.accounts = services.NewAccountService(pgrepo.NewAccountRepo(pg), a.cfg.AdminEmails)
	a.templates = services.NewTemplateService(pgrepo.NewTemplateRepo(pg), cache.NewRedisCache(config.RedisClient, "yoointerview"), a.log)
	a.transcripts = services.NewTranscriptService(pgrepo.NewUtteranceRepo(pg))
	a.buffers = services.NewBufferService(mongorepo.NewChunkRepo(mdb), a.cfg.AudioTTL)
	if a.gcs != nil {
		a.archive = services.NewArchiveService(pgrepo.NewArchiveRepo(pg), a.gcs, a.gcs)
	}

	a.interviews = services.NewInterviewService(services.InterviewServiceDeps{
		Interviews:  interviewRepo,
		Templates:   a.templates,
		Accounts:    a.accounts,
		Transcripts: a.transcripts,
		Archive:     a.archive,
		Queue:       services.NewFeedbackQueue(config.RedisClient),
		Logger:      a.log,
	})
	a.feedback = services.NewFeedbackService(interviewRepo, a.transcripts, feedback.New(a.feedbackLLM, a.log), a.log)
	a.questions = services.NewQuestionService(a.questionLLM, a.log)
}

func (a *app) routeDeps() routes.Deps {
	var buffers services.BufferService
	if a.cfg.STTEnabled {
		buffers = a.buffers
	}
	return routes.Deps{
		JWT:          middleware.JWTConfigFromEnv(),
		Capabilities: a.accounts,

		Account:    handlers.NewAccountHandler(a.accounts),
		Template:   handlers.NewTemplateHandler(a.templates),
		Interview:  handlers.NewInterviewHandler(a.interviews, a.live),
		Transcript: handlers.NewTranscriptHandler(a.interviews, a.transcripts, a.archive, a.live),
		Feedback:   handlers.NewFeedbackHandler(a.feedback),
		WS: handlers.NewWSHandler(handlers.WSDeps{
			Interviews: a.interviews,
			Buffers:    buffers,
			Questions:  a.questions,
			TTS:        a.tts,
			Redis:      config.RedisClient,
			Live:       a.live,
			Logger:     a.log,
		}, handlers.WSConfig{
			CountdownSeconds: a.cfg.CountdownSeconds,
			ServerSTT:        a.cfg.STTEnabled,
			AllowedOrigins:   a.cfg.AllowedOrigins,
			AudioBucket:      a.cfg.GCSBucket,
		}),
	}
}

// Close releases clients in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}
