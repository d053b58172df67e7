package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/yoointerview/config"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/api/routes"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	root := &cobra.Command{
		Use:           "yoointerview",
		Short:         "AI mock interview backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(log),
		workerCmd(log),
		migrateCmd(log),
		seedTemplatesCmd(log),
	)

	if err := root.Execute(); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd(log *logrus.Logger) *cobra.Command {
	var withWorkers bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := bootstrap(ctx, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if withWorkers {
				if err := app.startWorkers(ctx); err != nil {
					return err
				}
			}

			if !app.cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery(), middleware.RequestLogger(log))
			routes.RegisterRoutes(r, app.routeDeps())

			srv := &http.Server{
				Addr:              ":" + app.cfg.Port,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.WithField("port", app.cfg.Port).Info("http server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			log.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&withWorkers, "with-workers", false, "also run the audio and feedback workers in this process")
	return cmd
}

func workerCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the audio (STT) and feedback stream consumers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := bootstrap(ctx, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.startWorkers(ctx); err != nil {
				return err
			}
			log.Info("workers running")
			<-ctx.Done()
			return nil
		},
	}
}

func (a *app) startWorkers(ctx context.Context) error {
	fb := &workers.FeedbackWorkerPool{
		Redis:      config.RedisClient,
		Feedback:   a.feedback,
		NumWorkers: a.cfg.FeedbackWorkers,
		Timeout:    a.cfg.FeedbackTimeout,
		Logger:     a.log,
	}
	if err := fb.Start(ctx); err != nil {
		return err
	}

	if a.stt == nil {
		a.log.Info("STT_ENABLED is off, audio worker not started")
		return nil
	}
	audio := &workers.AudioWorkerPool{
		Redis:      config.RedisClient,
		Buffers:    a.buffers,
		NumWorkers: a.cfg.AudioWorkers,
		STT:        a.stt,
		Logger:     a.log,

		AudioBucket: a.cfg.GCSBucket,
	}
	return audio.Start(ctx)
}

func migrateCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create Postgres tables and Mongo indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.InitPostgres(cfg.Debug); err != nil {
				return fmt.Errorf("postgres init: %w", err)
			}
			if err := config.MigratePostgres(); err != nil {
				return fmt.Errorf("postgres migrate: %w", err)
			}
			log.Info("postgres migrated")

			if err := config.InitMongo(); err != nil {
				return fmt.Errorf("mongo init: %w", err)
			}
			defer config.CloseMongo(context.Background())
			if err := config.EnsureMongoIndexes(cfg.MongoDB); err != nil {
				return fmt.Errorf("mongo indexes: %w", err)
			}
			log.Info("mongo indexes ensured")
			return nil
		},
	}
}

func seedTemplatesCmd(log *logrus.Logger) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-templates",
		Short: "Upsert global role templates from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := config.LoadTemplateSeed(file)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			app, err := bootstrap(ctx, log)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.templates.Seed(ctx, templates)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"file": file, "count": n}).Info("templates seeded")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "config/seeds/templates.yaml", "seed file")
	return cmd
}
