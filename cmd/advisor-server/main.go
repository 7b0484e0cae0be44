// cmd/advisor-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/api"
	"github.com/Kathan1010/LoanAdviser/internal/api/handlers"
	"github.com/Kathan1010/LoanAdviser/internal/common/audit"
	"github.com/Kathan1010/LoanAdviser/internal/common/config"
	"github.com/Kathan1010/LoanAdviser/internal/common/database"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/notify"
	"github.com/Kathan1010/LoanAdviser/internal/common/observability"
	"github.com/Kathan1010/LoanAdviser/internal/common/retry"
	"github.com/Kathan1010/LoanAdviser/internal/common/session"
	generateresponse "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/generate-response"
	normalizetext "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/normalize-text"
	processturn "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/process-turn"
	transcribeaudio "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/transcribe-audio"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		zapLog.Fatal("advisor server stopped with error", zap.Error(err))
	}
	log.Info("advisor server stopped gracefully", nil)
}

// backends holds everything opened at startup that must be closed on exit.
type backends struct {
	store      session.Store
	sink       audit.Sink
	publisher  notify.Publisher
	components map[string]handlers.Pinger
	closers    []func() error
}

func (b *backends) close(log logger.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	tracing, err := observability.NewTracing(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	if err != nil {
		return err
	}
	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	obs.WithTracing(tracing)
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	orchestrator, err := processturn.New(&processturn.Config{
		MaxHistory:        cfg.Session.MaxHistory,
		PromptHistory:     cfg.Pipeline.PromptHistory,
		ExplainWhenReady:  !cfg.Pipeline.AcknowledgeOnly,
		LockTimeout:       config.GetDuration(cfg.Server.RequestTimeout),
		SideEffectTimeout: 5 * time.Second,
	}, processturn.Dependencies{
		Store:         b.store,
		Transcriber:   newTranscriber(cfg, log),
		Normalizer:    normalizetext.New(log),
		Responder:     newResponder(cfg, log),
		Audit:         b.sink,
		Publisher:     b.publisher,
		Observability: obs,
		Tracer:        tracing.Tracer(),
	}, log)
	if err != nil {
		return err
	}

	workers, err := startWorkers(ctx, cfg, orchestrator, b, log)
	if err != nil {
		return err
	}

	app := api.SetupRouter(
		handlers.NewChatHandler(orchestrator, config.GetDuration(cfg.Server.RequestTimeout), log),
		handlers.NewEligibilityHandler(log),
		handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, b.components),
		api.RouterConfig{
			BodyLimit:  cfg.Server.BodyLimitBytes,
			AccessLogs: cfg.Server.AccessLogs,
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http api listening", map[string]interface{}{"address": cfg.Server.Address})
		return app.Listen(cfg.Server.Address)
	})

	g.Go(func() error {
		log.Info("metrics server listening", map[string]interface{}{"address": cfg.Observability.MetricsAddress})
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		workers.stop(shutdownCtx)
		if err := app.ShutdownWithTimeout(20 * time.Second); err != nil {
			log.Error("http api shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{
		components: map[string]handlers.Pinger{},
		publisher:  notify.NoopPublisher{},
	}
	sinks := audit.MultiSink{audit.NewLogSink(log)}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rc := database.NewSessionRedis(cfg.Database.Redis)
		b.closers = append(b.closers, rc.Close)
		if err := connect(ctx, "redis", rc.Ping, log); err != nil {
			b.close(log)
			return nil, err
		}
		b.components["redis"] = rc
		b.store = session.NewRedisStore(rc.Client, cfg.Session.KeyPrefix, time.Duration(cfg.Session.TTL)*time.Second)
	default:
		b.store = session.NewMemoryStore()
	}

	if cfg.Audit.Postgres {
		pg, err := database.OpenAuditPostgres(cfg.Database.Postgres)
		if err != nil {
			b.close(log)
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		if err := connect(ctx, "postgres", pg.Ping, log); err != nil {
			b.close(log)
			return nil, err
		}
		sink := audit.NewPostgresSink(pg.DB)
		if err := sink.Migrate(ctx); err != nil {
			b.close(log)
			return nil, fmt.Errorf("migrate audit table: %w", err)
		}
		sinks = append(sinks, sink)
		b.components["postgres"] = pg
	}

	if cfg.Audit.Elasticsearch {
		es, err := database.NewAuditElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			b.close(log)
			return nil, err
		}
		if err := connect(ctx, "elasticsearch", es.Ping, log); err != nil {
			b.close(log)
			return nil, err
		}
		sink := audit.NewElasticsearchSink(es.Client, cfg.Database.Elasticsearch.Index)
		if err := sink.EnsureIndex(ctx); err != nil {
			b.close(log)
			return nil, fmt.Errorf("prepare audit index: %w", err)
		}
		sinks = append(sinks, sink)
		b.components["elasticsearch"] = es
	}
	b.sink = sinks

	if cfg.Notifications.SNS.Enabled {
		client, err := notify.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			b.close(log)
			return nil, err
		}
		b.publisher = notify.NewSNSPublisher(client, cfg.Notifications.SNS.TopicARN)
	}

	return b, nil
}

// connect waits for a backend that may still be starting next to us.
func connect(ctx context.Context, name string, ping func(context.Context) error, log logger.Logger) error {
	policy := retry.Exponential(10, 2*time.Second, 10*time.Second)
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn(name+" not reachable, retrying", map[string]interface{}{
			"attempt":     attempt,
			"nextRetryIn": wait.String(),
			"error":       err.Error(),
		})
	}
	if _, err := retry.Do(ctx, policy, ping); err != nil {
		return fmt.Errorf("%s connection: %w", name, err)
	}
	log.Info(name+" connected", nil)
	return nil
}

func newTranscriber(cfg *config.Config, log logger.Logger) processturn.Transcriber {
	if cfg.APIs.STT.BaseURL == "" {
		return nil
	}
	c := transcribeaudio.LoadConfig()
	c.BaseURL = cfg.APIs.STT.BaseURL
	c.APIKey = cfg.APIs.STT.APIKey
	c.Model = cfg.APIs.STT.Model
	c.Timeout = config.GetDuration(cfg.APIs.STT.Timeout)
	c.MaxAttempts = cfg.Pipeline.STTMaxAttempts
	c.Backoff = config.GetDuration(cfg.Pipeline.STTBackoff)
	return transcribeaudio.New(c, log)
}

func newResponder(cfg *config.Config, log logger.Logger) processturn.Responder {
	c := generateresponse.LoadConfig()
	c.GenAIBaseURL = cfg.APIs.GenAI.BaseURL
	c.APIKey = cfg.APIs.GenAI.APIKey
	c.Timeout = config.GetDuration(cfg.APIs.GenAI.Timeout)
	c.MaxAttempts = cfg.Pipeline.LLMMaxAttempts
	c.MaxTokens = cfg.APIs.GenAI.MaxTokens
	c.Temperature = cfg.APIs.GenAI.Temperature
	return generateresponse.New(c, log)
}
